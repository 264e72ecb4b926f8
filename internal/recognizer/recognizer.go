// Package recognizer sends captured frames to a gesture recognition service
// and returns the recognized gesture label.
package recognizer

import (
	"context"
	"errors"

	"gocv.io/x/gocv"
)

var (
	// ErrUnreachable is returned when the service could not be contacted or
	// the exchange was interrupted.
	ErrUnreachable = errors.New("recognition service unreachable")

	// ErrInvalidResponse is returned for non-2xx replies and bodies that do
	// not parse.
	ErrInvalidResponse = errors.New("invalid recognition response")
)

// Result is the outcome of one recognition call.
type Result struct {
	// Gesture is the recognized label, or "" when no hand was detected.
	Gesture string
	// Annotated is a JPEG of the frame with the service's overlay, if any.
	Annotated []byte
}

// Recognizer defines the interface for gesture recognition backends.
type Recognizer interface {
	// Recognize encodes frame, sends it to the service and waits for the reply.
	Recognize(ctx context.Context, frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the recognizer.
	Close() error
}

// wireResponse is the JSON reply shared by the HTTP and subprocess transports.
type wireResponse struct {
	Gesture        *string `json:"gesture"`
	ProcessedImage *string `json:"processed_image"`
	Error          string  `json:"error,omitempty"`
}

// toResult validates a decoded reply.
func (w wireResponse) toResult() (Result, error) {
	if w.Error != "" {
		return Result{}, errors.Join(ErrInvalidResponse, errors.New(w.Error))
	}

	var res Result
	if w.Gesture != nil {
		res.Gesture = *w.Gesture
	}
	if w.ProcessedImage != nil && *w.ProcessedImage != "" {
		img, err := DecodeImage(*w.ProcessedImage)
		if err != nil {
			return Result{}, errors.Join(ErrInvalidResponse, err)
		}
		res.Annotated = img
	}
	return res, nil
}

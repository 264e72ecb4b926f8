package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// DefaultTimeout bounds a single recognition round trip.
const DefaultTimeout = 2 * time.Second

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 8 << 20

// HTTPRecognizer calls a recognition service over HTTP.
type HTTPRecognizer struct {
	url     string
	client  *http.Client
	quality int
}

// NewHTTPRecognizer creates a recognizer posting frames to url.
func NewHTTPRecognizer(url string, timeout time.Duration) *HTTPRecognizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPRecognizer{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		quality: DefaultJPEGQuality,
	}
}

// URL returns the service endpoint.
func (r *HTTPRecognizer) URL() string {
	return r.url
}

// Recognize encodes frame as JPEG and posts it to the service.
func (r *HTTPRecognizer) Recognize(ctx context.Context, frame *gocv.Mat) (Result, error) {
	jpeg, err := EncodeFrame(frame, r.quality)
	if err != nil {
		return Result{}, err
	}
	return r.RecognizeJPEG(ctx, jpeg)
}

// RecognizeJPEG posts an already encoded frame.
func (r *HTTPRecognizer) RecognizeJPEG(ctx context.Context, jpeg []byte) (Result, error) {
	body, err := json.Marshal(map[string]string{"image": DataURL(jpeg)})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return wire.toResult()
}

// Close drops idle keep-alive connections.
func (r *HTTPRecognizer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

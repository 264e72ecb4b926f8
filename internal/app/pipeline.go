package app

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/snakegesture/internal/gesture"
	"github.com/ayusman/snakegesture/internal/input"
	"github.com/ayusman/snakegesture/internal/recognizer"
	"gocv.io/x/gocv"
)

// runPipeline is the capture loop of one gesture session.
//
// Each cycle reads a frame, waits for the recognition service, and feeds
// the label to the session's debouncer. The next frame is captured only
// after the previous call resolved, so the loop runs at the service's pace,
// with MinCycle as a floor. ctx is checked at the loop boundary and again
// after recognition. A result arriving after the session stopped is dropped.
func (a *App) runPipeline(ctx context.Context, session *gesture.Session) {
	var lastErr string

	for {
		if ctx.Err() != nil {
			return
		}
		started := time.Now()

		if err := a.cycle(ctx, session); err != nil {
			// Repeated identical failures are logged once.
			if msg := err.Error(); msg != lastErr {
				log.Printf("Gesture cycle failed: %v", err)
				lastErr = msg
			}
		} else {
			lastErr = ""
		}

		wait := a.settings.MinCycle - time.Since(started)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// cycle runs one capture, recognition and debounce step.
func (a *App) cycle(ctx context.Context, session *gesture.Session) error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return err
	}

	res, err := a.recognize(frame)
	frame.Close()

	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		// Treated as no gesture.
		return err
	}
	a.deliver(session, res)
	return nil
}

// deliver hands a recognition result to the preview and the debouncer. The
// preview is decoded first; only the session check and the hand-off run under
// the App lock, so a result can never land after StopGesture returned.
func (a *App) deliver(session *gesture.Session, res recognizer.Result) {
	var (
		frame    previewFrame
		hasFrame bool
	)
	if len(res.Annotated) > 0 {
		f, err := decodePreview(res.Annotated)
		if err != nil {
			log.Printf("Discarding preview: %v", err)
		} else {
			frame, hasFrame = f, true
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != session {
		return
	}

	if hasFrame {
		a.preview.put(frame)
	}

	now := time.Now()
	cmd, ok := session.Debouncer.Accept(res.Gesture, now)
	if !ok {
		return
	}

	if !a.queue.Push(input.Event{Source: input.SourceGesture, Command: cmd, At: now}) {
		log.Printf("Input queue full, dropped gesture %s", cmd)
	}
}

// recognize bounds the call with RecognizeTimeout. The session context is
// not passed on: stopping never aborts a request in flight.
func (a *App) recognize(frame *gocv.Mat) (recognizer.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.settings.RecognizeTimeout)
	defer cancel()
	return a.recognizer.Recognize(ctx, frame)
}

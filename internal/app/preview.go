package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoPreview is returned when no annotated frame is available.
var ErrNoPreview = errors.New("no preview available")

// Preview holds the latest annotated frame returned by the recognition
// service. Waiters are woken whenever it changes.
type Preview struct {
	mu      sync.Mutex
	jpeg    []byte
	width   int
	height  int
	version uint64
	changed chan struct{}
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{changed: make(chan struct{})}
}

type previewFrame struct {
	jpeg          []byte
	width, height int
}

// decodePreview checks that jpeg decodes to a non-empty image.
func decodePreview(jpeg []byte) (previewFrame, error) {
	mat, err := gocv.IMDecode(jpeg, gocv.IMReadUnchanged)
	if err != nil {
		return previewFrame{}, fmt.Errorf("decode preview: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return previewFrame{}, errors.New("decode preview: empty image")
	}
	return previewFrame{jpeg: jpeg, width: mat.Cols(), height: mat.Rows()}, nil
}

// Set stores jpeg if it decodes to a non-empty image.
func (p *Preview) Set(jpeg []byte) error {
	f, err := decodePreview(jpeg)
	if err != nil {
		return err
	}
	p.put(f)
	return nil
}

func (p *Preview) put(f previewFrame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = f.jpeg
	p.width, p.height = f.width, f.height
	p.bump()
}

// Clear drops the stored frame.
func (p *Preview) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jpeg == nil {
		return
	}
	p.jpeg = nil
	p.width, p.height = 0, 0
	p.bump()
}

// bump must be called with mu held.
func (p *Preview) bump() {
	p.version++
	close(p.changed)
	p.changed = make(chan struct{})
}

// Latest returns the stored frame and its version, or ErrNoPreview.
func (p *Preview) Latest() ([]byte, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jpeg == nil {
		return nil, p.version, ErrNoPreview
	}
	return p.jpeg, p.version, nil
}

// Available reports whether a frame is stored.
func (p *Preview) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg != nil
}

// Size returns the dimensions of the stored frame.
func (p *Preview) Size() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Wait blocks until the version moves past after, then returns the current
// frame (nil if it was cleared) and version.
func (p *Preview) Wait(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		p.mu.Lock()
		if p.version != after {
			jpeg, v := p.jpeg, p.version
			p.mu.Unlock()
			return jpeg, v, nil
		}
		changed := p.changed
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-changed:
		}
	}
}

// Package testdata generates synthetic camera frames for tests.
package testdata

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame size matching the default capture resolution.
const (
	FrameWidth  = 320
	FrameHeight = 240
)

// Frame returns a grey frame with a bright square at (x, y), a stand-in for
// a hand. The caller must Close it.
func Frame(x, y int) *gocv.Mat {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 40, 40, 0), FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	hand := image.Rect(x, y, x+60, y+60).Intersect(image.Rect(0, 0, FrameWidth, FrameHeight))
	gocv.Rectangle(&mat, hand, color.RGBA{R: 230, G: 190, B: 160, A: 255}, -1)
	return &mat
}

// Sequence returns n frames with the square sweeping left to right.
func Sequence(n int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		step := 0
		if n > 1 {
			step = i * (FrameWidth - 60) / (n - 1)
		}
		frames[i] = Frame(step, FrameHeight/2-30)
	}
	return frames
}

// CloseAll releases frames returned by Sequence.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

// JPEG returns an encoded synthetic frame, as a recognizer would send back
// for its annotated preview.
func JPEG() ([]byte, error) {
	frame := Frame(FrameWidth/2-30, FrameHeight/2-30)
	defer frame.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

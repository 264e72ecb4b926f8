package recognizer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// DefaultJPEGQuality matches the quality the browser client used.
const DefaultJPEGQuality = 50

const dataURLPrefix = "data:image/jpeg;base64,"

// EncodeFrame compresses frame to JPEG at the given quality (1-100).
func EncodeFrame(frame *gocv.Mat, quality int) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes may alias native memory that Close frees.
	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// DataURL wraps JPEG bytes as a data URL.
func DataURL(jpeg []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(jpeg)
}

// DecodeImage accepts either a data URL or bare base64 and returns the raw bytes.
func DecodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, errors.New("malformed data URL")
		}
		s = s[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}

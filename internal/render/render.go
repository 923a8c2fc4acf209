// Package render draws the preview overlay and encodes frames for streaming.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/handsnap/internal/detector"
	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when asked to encode a nil or empty frame.
var ErrEmptyFrame = errors.New("frame is empty")

// Overlay colors.
var (
	LandmarkColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	ConnectionColor = color.RGBA{R: 224, G: 224, B: 224, A: 0}
	StatusColor     = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

const (
	landmarkRadius   = 3
	lineThickness    = 2
	statusFontScale  = 0.6
	statusThickness  = 2
	statusMarginLeft = 10
	statusBaseline   = 28
)

// DefaultQuality is the JPEG quality used for the preview stream.
const DefaultQuality = 80

// Landmarks draws the hand skeleton onto frame in place. Landmarks are
// normalized, so the frame's own size decides the pixel positions.
func Landmarks(frame *gocv.Mat, hand *detector.HandLandmarks) {
	if frame == nil || frame.Empty() || hand == nil {
		return
	}

	w, h := frame.Cols(), frame.Rows()

	for _, c := range detector.Connections {
		gocv.Line(frame, hand.Pixel(c[0], w, h), hand.Pixel(c[1], w, h), ConnectionColor, lineThickness)
	}
	for i := range hand.Points {
		gocv.Circle(frame, hand.Pixel(i, w, h), landmarkRadius, LandmarkColor, -1)
	}
}

// Status writes text along the top-left edge of frame.
func Status(frame *gocv.Mat, text string) {
	if frame == nil || frame.Empty() || text == "" {
		return
	}
	gocv.PutText(frame, text, image.Pt(statusMarginLeft, statusBaseline),
		gocv.FontHersheySimplex, statusFontScale, StatusColor, statusThickness)
}

// Preview draws every hand and the status line onto frame.
func Preview(frame *gocv.Mat, hands []detector.HandLandmarks, status string) {
	for i := range hands {
		Landmarks(frame, &hands[i])
	}
	Status(frame, status)
}

// JPEG encodes frame at the given quality. Out-of-range qualities select
// DefaultQuality.
func JPEG(frame *gocv.Mat, quality int) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, ErrEmptyFrame
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close, so copy out.
	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

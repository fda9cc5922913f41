// Package fixtures builds synthetic frames for tests and replays.
package fixtures

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Fixture colours. gocv maps the RGBA fields onto BGR by name.
var (
	Black = color.RGBA{0, 0, 0, 0}
	White = color.RGBA{255, 255, 255, 0}
)

// SolidFrame returns a rows×cols BGR frame filled with c.
func SolidFrame(rows, cols int, c color.RGBA) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0), rows, cols, gocv.MatTypeCV8UC3)
}

// RectFrame returns a frame of colour bg with rect filled in fg.
func RectFrame(rows, cols int, rect image.Rectangle, bg, fg color.RGBA) gocv.Mat {
	m := SolidFrame(rows, cols, bg)
	gocv.Rectangle(&m, rect, fg, -1)
	return m
}

// EmptyMask returns a rows×cols single-channel mask of zeros.
func EmptyMask(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
}

// FillMask sets every pixel of rect in mask to 255.
func FillMask(mask *gocv.Mat, rect image.Rectangle) {
	gocv.Rectangle(mask, rect, White, -1)
}

// DiagonalSequence returns n frames with a size×size white square on black,
// starting at origin and moving by step pixels along both axes each frame.
// The caller must close the returned Mats.
func DiagonalSequence(rows, cols, n, size, step int, origin image.Point) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		p := origin.Add(image.Pt(step*i, step*i))
		m := RectFrame(rows, cols, image.Rect(p.X, p.Y, p.X+size, p.Y+size), Black, White)
		frames = append(frames, &m)
	}
	return frames
}

// CloseAll closes every Mat in frames.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

// Package vision turns BGR frames into the inverted hole and wire masks and
// measures them.
package vision

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/wirefeed/holetrack/internal/tuner"
)

// KernelSize is the side of the elliptical structuring element used to clean the hole mask.
const KernelSize = 5

// ErrEmptyFrame is returned when Process is handed an empty Mat.
var ErrEmptyFrame = errors.New("empty frame")

// Masks are the inverted single-channel masks produced for one frame.
// They belong to the Processor and are overwritten by the next call to Process.
type Masks struct {
	Hole gocv.Mat
	Wire gocv.Mat
}

// Processor converts frames to HSV and thresholds them. Its Mats are reused
// across frames; call Close when done.
type Processor struct {
	// Blur smooths the HSV image before thresholding. Off by default.
	Blur BlurStage

	kernel gocv.Mat
	hsv    gocv.Mat
	hole   gocv.Mat
	wire   gocv.Mat
}

// NewProcessor allocates the working Mats and the 5×5 ellipse kernel.
func NewProcessor() *Processor {
	return &Processor{
		kernel: gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(KernelSize, KernelSize)),
		hsv:    gocv.NewMat(),
		hole:   gocv.NewMat(),
		wire:   gocv.NewMat(),
	}
}

// Process thresholds frame with bounds. The hole mask is opened then closed
// before both masks are inverted, so foreground is whatever missed the threshold.
func (p *Processor) Process(frame gocv.Mat, bounds tuner.MaskBounds) (Masks, error) {
	if frame.Empty() {
		return Masks{}, ErrEmptyFrame
	}

	gocv.CvtColor(frame, &p.hsv, gocv.ColorBGRToHSV)
	p.Blur.Apply(&p.hsv)

	gocv.InRangeWithScalar(p.hsv, bounds.Hole.Low.Scalar(), bounds.Hole.High.Scalar(), &p.hole)
	gocv.InRangeWithScalar(p.hsv, bounds.Wire.Low.Scalar(), bounds.Wire.High.Scalar(), &p.wire)

	Open(&p.hole, p.kernel)
	Close(&p.hole, p.kernel)

	gocv.BitwiseNot(p.hole, &p.hole)
	gocv.BitwiseNot(p.wire, &p.wire)

	return Masks{Hole: p.hole, Wire: p.wire}, nil
}

// Kernel returns the structuring element used for the hole mask.
func (p *Processor) Kernel() gocv.Mat {
	return p.kernel
}

// Close releases the working Mats.
func (p *Processor) Close() error {
	p.kernel.Close()
	p.hsv.Close()
	p.hole.Close()
	p.wire.Close()
	return nil
}

// Open erodes then dilates mask in place, removing specks smaller than kernel.
func Open(mask *gocv.Mat, kernel gocv.Mat) {
	gocv.Erode(*mask, mask, kernel)
	gocv.Dilate(*mask, mask, kernel)
}

// Close dilates then erodes mask in place, filling gaps narrower than kernel.
func Close(mask *gocv.Mat, kernel gocv.Mat) {
	gocv.Dilate(*mask, mask, kernel)
	gocv.Erode(*mask, mask, kernel)
}

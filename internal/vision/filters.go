package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// BlurKernelSize is the side of the Gaussian kernel applied to the HSV image.
const BlurKernelSize = 9

// Canny hysteresis thresholds for the edge view.
const (
	EdgeLowThreshold  = 100
	EdgeHighThreshold = 200
)

// BlurStage smooths the HSV image before thresholding, which suppresses
// sensor noise at the cost of softer mask borders.
type BlurStage struct {
	Enabled bool
}

// Apply blurs img in place. A disabled stage leaves img untouched.
func (s BlurStage) Apply(img *gocv.Mat) {
	if !s.Enabled || img.Empty() {
		return
	}
	gocv.GaussianBlur(*img, img, image.Pt(BlurKernelSize, BlurKernelSize), 0, 0, gocv.BorderDefault)
}

// EdgeStage renders the outline of a mask with Canny into its own Mat.
// The mask itself is not modified, so moments are unaffected.
type EdgeStage struct {
	Enabled bool
}

// Apply writes the edges of mask into dst and returns the number of edge
// pixels. A disabled stage does nothing and returns 0.
func (s EdgeStage) Apply(mask gocv.Mat, dst *gocv.Mat) int {
	if !s.Enabled || mask.Empty() {
		return 0
	}
	gocv.Canny(mask, dst, EdgeLowThreshold, EdgeHighThreshold)
	return gocv.CountNonZero(*dst)
}

package vision

import (
	"image/color"

	"gocv.io/x/gocv"
)

// ContourThickness is the stroke used when drawing wire contours.
const ContourThickness = 3

// ContourColor is drawn onto the single-channel wire mask, where only its
// first component (blue) lands, i.e. contours are painted black.
var ContourColor = color.RGBA{0, 255, 0, 0}

// ContourStage is a diagnostic pass over the wire mask. It finds every
// contour with full hierarchy and draws them back onto the same mask.
// Nothing downstream reads the result.
type ContourStage struct {
	Enabled bool
}

// Apply runs the stage on mask and returns the number of contours found.
// A disabled stage leaves mask untouched and returns 0.
func (s ContourStage) Apply(mask *gocv.Mat) int {
	if !s.Enabled || mask.Empty() {
		return 0
	}

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	contours := gocv.FindContoursWithParams(*mask, &hierarchy, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	n := contours.Size()
	if n > 0 {
		gocv.DrawContours(mask, contours, -1, ContourColor, ContourThickness)
	}

	return n
}

package vision

import (
	"gocv.io/x/gocv"

	"github.com/wirefeed/holetrack/internal/tracker"
)

// MomentsOf returns the raw spatial moments of a single-channel mask,
// weighting each pixel by its intensity.
func MomentsOf(mask gocv.Mat) tracker.Moments {
	m := gocv.Moments(mask, false)
	return tracker.Moments{
		M00: m["m00"],
		M10: m["m10"],
		M01: m["m01"],
	}
}

// Package tuner holds the live-editable HSV bounds of the hole and wire masks.
package tuner

import "gocv.io/x/gocv"

// Channel limits in OpenCV's 8-bit HSV encoding.
const (
	MaxHue        = 179
	MaxSaturation = 255
	MaxValue      = 255
)

// HSV is one corner of a threshold box.
type HSV struct {
	H, S, V int
}

// Scalar converts the triple to a gocv.Scalar for InRangeWithScalar.
func (c HSV) Scalar() gocv.Scalar {
	return gocv.NewScalar(float64(c.H), float64(c.S), float64(c.V), 0)
}

// Range is an inclusive HSV threshold box. Low <= High is not enforced.
type Range struct {
	Low  HSV
	High HSV
}

// Empty reports whether some channel has Low above High. InRange matches
// nothing for such a box, so the inverted mask turns fully white.
func (r Range) Empty() bool {
	return r.Low.H > r.High.H || r.Low.S > r.High.S || r.Low.V > r.High.V
}

// MaskBounds are the twelve tunable integers: low/high × H/S/V for both masks.
type MaskBounds struct {
	Hole Range
	Wire Range
}

// DefaultMaskBounds returns the starting bounds for the close-up camera.
func DefaultMaskBounds() MaskBounds {
	return MaskBounds{
		Hole: Range{
			Low:  HSV{H: 0, S: 0, V: 16},
			High: HSV{H: MaxHue, S: MaxSaturation, V: MaxValue},
		},
		Wire: Range{
			Low:  HSV{H: 0, S: 0, V: 96},
			High: HSV{H: MaxHue, S: MaxSaturation, V: MaxValue},
		},
	}
}

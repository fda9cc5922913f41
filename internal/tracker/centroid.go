// Package tracker follows the centroid of the hole mask across frames and
// keeps the trail of accepted positions.
package tracker

import (
	"image"

	"github.com/pkg/errors"
)

// DefaultMinArea is the zeroth moment a mask must exceed before its centroid
// is trusted. Anything at or below it is treated as noise.
const DefaultMinArea = 10000

// Mode selects how a Mark is rendered on the trail.
type Mode string

const (
	// ModeCircle draws a ring at the current centroid only.
	ModeCircle Mode = "circle"
	// ModeLine joins the previous centroid to the current one.
	ModeLine Mode = "line"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCircle, ModeLine:
		return Mode(s), nil
	}
	return "", errors.Errorf("unknown trail mode %q (want %q or %q)", s, ModeCircle, ModeLine)
}

// Moments are the raw image moments needed for a centroid.
type Moments struct {
	M00 float64
	M10 float64
	M01 float64
}

// Mark is a draw instruction for the trail.
type Mark struct {
	From image.Point
	To   image.Point
}

// Observation is the tracker's verdict on one frame.
type Observation struct {
	// Accepted is false when the mask mass was at or below the noise floor.
	Accepted bool
	Centroid image.Point
	Area     float64
	// Mark is set when both the previous and current centroids are known.
	Mark *Mark
}

var unknown = image.Pt(-1, -1)

// Tracker holds the last accepted centroid between frames.
type Tracker struct {
	MinArea float64
	last    image.Point
}

// New creates a Tracker with the given noise floor. Values <= 0 select DefaultMinArea.
func New(minArea float64) *Tracker {
	if minArea <= 0 {
		minArea = DefaultMinArea
	}
	return &Tracker{MinArea: minArea, last: unknown}
}

// Update feeds one frame's moments. Below the noise floor the previous
// position is kept as is, however stale.
func (t *Tracker) Update(m Moments) Observation {
	if m.M00 <= t.MinArea {
		return Observation{Area: m.M00}
	}

	// Conversion truncates toward zero, matching integer pixel coordinates.
	cur := image.Pt(int(m.M10/m.M00), int(m.M01/m.M00))

	obs := Observation{
		Accepted: true,
		Centroid: cur,
		Area:     m.M00,
	}
	if known(t.last) && known(cur) {
		obs.Mark = &Mark{From: t.last, To: cur}
	}

	t.last = cur
	return obs
}

// Last returns the last accepted centroid and whether one exists.
func (t *Tracker) Last() (image.Point, bool) {
	return t.last, known(t.last)
}

// Reset forgets the last position.
func (t *Tracker) Reset() {
	t.last = unknown
}

func known(p image.Point) bool {
	return p.X >= 0 && p.Y >= 0
}

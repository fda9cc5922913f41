// Package app runs the capture → threshold → track → display loop.
package app

import (
	"github.com/wirefeed/holetrack/internal/display"
	"github.com/wirefeed/holetrack/internal/tracker"
	"github.com/wirefeed/holetrack/internal/tuner"
)

// DefaultDeviceID is the webcam index used when none is given. Both the
// close-up and wide-angle rigs were wired to the same index.
const DefaultDeviceID = 2

// Config holds configuration options for the tracking loop.
type Config struct {
	DeviceID   int
	VideoFile  string // when set, frames come from this file instead of DeviceID
	Bounds     tuner.MaskBounds
	Contours   bool // run the wire contour diagnostic
	Blur       bool // 9×9 Gaussian blur of the HSV image before thresholding
	Edges      bool // show the Canny outline of the hole mask
	TrailMode  tracker.Mode
	ClearEvery int // frames between trail wipes, 0 = never
	MinArea    float64
	WaitMs     int
	RecordPath string // SQLite file for session recording, empty = off
	ServeAddr  string // monitor server address, empty = off
}

// DefaultConfig returns the settings of the close-up rig.
func DefaultConfig() Config {
	return Config{
		DeviceID:  DefaultDeviceID,
		Bounds:    tuner.DefaultMaskBounds(),
		Contours:  true,
		TrailMode: tracker.ModeCircle,
		MinArea:   tracker.DefaultMinArea,
		WaitMs:    display.DefaultWaitMs,
	}
}

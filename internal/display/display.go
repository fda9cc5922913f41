// Package display shows the tracking windows and pumps GUI events.
// Everything here must run on the goroutine that owns the frame loop.
package display

import (
	"gocv.io/x/gocv"

	"github.com/wirefeed/holetrack/internal/tuner"
)

// Window titles.
const (
	MaskWindow     = "Thresholded Image"
	OriginalWindow = "Original"
	ControlWindow  = "Control"
	EdgeWindow     = "Edges"
)

const (
	// EscKey is the key code that stops the loop.
	EscKey = 27
	// DefaultWaitMs is the key poll timeout. It also paces the loop.
	DefaultWaitMs = 30
)

// Sink receives the two images shown each iteration.
type Sink interface {
	Show(mask, composite gocv.Mat)
	// WaitKey services GUI events for up to delayMs and returns the key
	// pressed, or -1.
	WaitKey(delayMs int) int
	Close() error
}

// EdgeSink is implemented by sinks that can also show the edge view.
type EdgeSink interface {
	ShowEdges(edges gocv.Mat)
}

// Windows is the highgui-backed Sink.
type Windows struct {
	mask     *gocv.Window
	original *gocv.Window
	control  *gocv.Window
	edges    *gocv.Window // opened on first ShowEdges
}

// NewWindows opens the mask, original and control windows.
func NewWindows() *Windows {
	return &Windows{
		mask:     gocv.NewWindow(MaskWindow),
		original: gocv.NewWindow(OriginalWindow),
		control:  gocv.NewWindow(ControlWindow),
	}
}

// Show displays the inverted hole mask and the composited frame.
func (w *Windows) Show(mask, composite gocv.Mat) {
	w.mask.IMShow(mask)
	w.original.IMShow(composite)
}

// ShowEdges displays the edge view in its own window.
func (w *Windows) ShowEdges(edges gocv.Mat) {
	if w.edges == nil {
		w.edges = gocv.NewWindow(EdgeWindow)
	}
	w.edges.IMShow(edges)
}

// WaitKey polls the keyboard and runs trackbar callbacks.
func (w *Windows) WaitKey(delayMs int) int {
	return w.original.WaitKey(delayMs)
}

// NewSlider adds a trackbar to the control window. It makes Windows a
// tuner.SliderFactory.
func (w *Windows) NewSlider(name string, max int) tuner.Slider {
	return w.control.CreateTrackbar(name, max)
}

// Close destroys all windows.
func (w *Windows) Close() error {
	w.mask.Close()
	w.original.Close()
	w.control.Close()
	if w.edges != nil {
		w.edges.Close()
	}
	return nil
}

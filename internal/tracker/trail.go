package tracker

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Trail marker geometry.
const (
	MarkerRadius    = 10
	MarkerThickness = 2
)

// MarkerColor is red. gocv maps the RGBA fields onto BGR by name.
var MarkerColor = color.RGBA{R: 255}

// ErrSizeMismatch is returned by Composite when a frame differs in size from
// the canvas, which is fixed by the first frame seen.
var ErrSizeMismatch = errors.New("frame size differs from trail canvas")

// Trail is an overlay canvas that accumulates markers for the lifetime of
// the process. Its size never changes after the first frame, so memory use
// is flat; only pixel values grow.
type Trail struct {
	Mode Mode
	// ClearEvery zeroes the canvas after that many composited frames. 0 keeps it forever.
	ClearEvery int

	canvas gocv.Mat
	size   image.Point
	frames int
}

// NewTrail returns an empty trail. The canvas is allocated on first use.
func NewTrail(mode Mode) *Trail {
	if mode == "" {
		mode = ModeCircle
	}
	return &Trail{Mode: mode}
}

// Init allocates a black canvas matching frame if none exists yet.
func (t *Trail) Init(frame gocv.Mat) {
	if t.Ready() {
		return
	}
	t.size = image.Pt(frame.Cols(), frame.Rows())
	t.canvas = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frame.Rows(), frame.Cols(), gocv.MatTypeCV8UC3)
}

// Ready reports whether the canvas has been allocated.
func (t *Trail) Ready() bool {
	return t.size != image.Point{}
}

// Size returns the canvas dimensions as (cols, rows).
func (t *Trail) Size() image.Point {
	return t.size
}

// Draw renders m onto the canvas. It is a no-op before Init.
func (t *Trail) Draw(m Mark) {
	if !t.Ready() {
		return
	}
	switch t.Mode {
	case ModeLine:
		gocv.Line(&t.canvas, m.From, m.To, MarkerColor, MarkerThickness)
	default:
		gocv.Circle(&t.canvas, m.To, MarkerRadius, MarkerColor, MarkerThickness)
	}
}

// Composite writes frame + canvas into dst with saturating addition.
func (t *Trail) Composite(frame gocv.Mat, dst *gocv.Mat) error {
	t.Init(frame)

	if frame.Cols() != t.size.X || frame.Rows() != t.size.Y || frame.Type() != t.canvas.Type() {
		return errors.Wrapf(ErrSizeMismatch, "frame %dx%d, canvas %dx%d",
			frame.Cols(), frame.Rows(), t.size.X, t.size.Y)
	}

	gocv.Add(frame, t.canvas, dst)

	t.frames++
	if t.ClearEvery > 0 && t.frames%t.ClearEvery == 0 {
		t.Clear()
	}
	return nil
}

// Clear blacks out the canvas without releasing it.
func (t *Trail) Clear() {
	if t.Ready() {
		t.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
	}
}

// Canvas exposes the overlay for inspection. It must not be closed by callers.
func (t *Trail) Canvas() gocv.Mat {
	return t.canvas
}

// Close releases the canvas.
func (t *Trail) Close() error {
	if t.Ready() {
		t.canvas.Close()
		t.size = image.Point{}
	}
	return nil
}

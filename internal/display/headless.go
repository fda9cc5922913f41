package display

import (
	"gocv.io/x/gocv"
)

// Headless is a Sink that shows nothing. It counts frames and can inject
// key presses, which is what tests and --headless runs need.
type Headless struct {
	Frames     int
	EdgeFrames int
	keys       []int
	// LastMask, LastComposite and LastEdges hold clones of the most recent images when Keep is set.
	Keep          bool
	LastMask      gocv.Mat
	LastComposite gocv.Mat
	LastEdges     gocv.Mat
	held          bool
	heldEdges     bool
}

// NewHeadless returns a Sink that never opens a window.
func NewHeadless() *Headless {
	return &Headless{}
}

// PressAfter queues key to be returned by the n-th WaitKey call (1-based).
func (h *Headless) PressAfter(n, key int) {
	for len(h.keys) < n {
		h.keys = append(h.keys, -1)
	}
	h.keys[n-1] = key
}

func (h *Headless) Show(mask, composite gocv.Mat) {
	h.Frames++
	if !h.Keep {
		return
	}
	h.release()
	h.LastMask = mask.Clone()
	h.LastComposite = composite.Clone()
	h.held = true
}

func (h *Headless) ShowEdges(edges gocv.Mat) {
	h.EdgeFrames++
	if !h.Keep {
		return
	}
	h.releaseEdges()
	h.LastEdges = edges.Clone()
	h.heldEdges = true
}

func (h *Headless) WaitKey(delayMs int) int {
	if len(h.keys) == 0 {
		return -1
	}
	k := h.keys[0]
	h.keys = h.keys[1:]
	return k
}

func (h *Headless) Close() error {
	h.release()
	h.releaseEdges()
	return nil
}

func (h *Headless) release() {
	if h.held {
		h.LastMask.Close()
		h.LastComposite.Close()
		h.held = false
	}
}

func (h *Headless) releaseEdges() {
	if h.heldEdges {
		h.LastEdges.Close()
		h.heldEdges = false
	}
}

package display

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestHeadless_PressAfter(t *testing.T) {
	h := NewHeadless()
	h.PressAfter(3, EscKey)

	want := []int{-1, -1, EscKey, -1}
	for i, w := range want {
		if got := h.WaitKey(DefaultWaitMs); got != w {
			t.Errorf("WaitKey() call %d = %d, want %d", i+1, got, w)
		}
	}
}

func TestHeadless_ShowCountsFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	h := NewHeadless()
	h.Keep = true
	defer h.Close()

	mask := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC1)
	defer mask.Close()
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	h.Show(mask, frame)
	h.Show(mask, frame)

	if h.Frames != 2 {
		t.Errorf("Frames = %d, want 2", h.Frames)
	}
	if h.LastComposite.Channels() != 3 || h.LastMask.Channels() != 1 {
		t.Errorf("kept images have %d/%d channels, want 1/3", h.LastMask.Channels(), h.LastComposite.Channels())
	}
}

func TestHeadless_ShowEdges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	var _ EdgeSink = (*Headless)(nil)
	var _ EdgeSink = (*Windows)(nil)

	h := NewHeadless()
	h.Keep = true
	defer h.Close()

	edges := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC1)
	defer edges.Close()

	h.ShowEdges(edges)
	h.ShowEdges(edges)

	if h.EdgeFrames != 2 {
		t.Errorf("EdgeFrames = %d, want 2", h.EdgeFrames)
	}
	if h.LastEdges.Rows() != 10 {
		t.Errorf("LastEdges rows = %d, want 10", h.LastEdges.Rows())
	}
}

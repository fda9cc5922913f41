package vision

import (
	"image"
	"testing"

	"github.com/wirefeed/holetrack/internal/fixtures"
)

func TestContourStage_Disabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mask := fixtures.EmptyMask(60, 60)
	defer mask.Close()
	fixtures.FillMask(&mask, image.Rect(10, 10, 40, 40))

	if n := (ContourStage{}).Apply(&mask); n != 0 {
		t.Errorf("disabled stage found %d contours", n)
	}
	if v := mask.GetUCharAt(10, 10); v != 255 {
		t.Errorf("disabled stage modified the mask: %d", v)
	}
}

func TestContourStage_FindsAndDrawsContours(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mask := fixtures.EmptyMask(80, 80)
	defer mask.Close()
	fixtures.FillMask(&mask, image.Rect(10, 10, 30, 30))
	fixtures.FillMask(&mask, image.Rect(45, 45, 70, 70))

	n := ContourStage{Enabled: true}.Apply(&mask)
	if n != 2 {
		t.Fatalf("Apply() = %d contours, want 2", n)
	}

	// Outlines are painted with value 0 on the single-channel mask.
	if v := mask.GetUCharAt(10, 10); v != 0 {
		t.Errorf("contour corner = %d, want 0", v)
	}
	if v := mask.GetUCharAt(20, 20); v != 255 {
		t.Errorf("region interior = %d, want 255", v)
	}
}

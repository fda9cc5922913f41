package tuner

import "testing"

type fakeSlider struct {
	max int
	pos int
}

func (s *fakeSlider) GetPos() int { return s.pos }

func (s *fakeSlider) SetPos(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > s.max {
		pos = s.max
	}
	s.pos = pos
}

type fakeFactory struct {
	sliders map[string]*fakeSlider
	order   []string
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{sliders: make(map[string]*fakeSlider)}
}

func (f *fakeFactory) NewSlider(name string, max int) Slider {
	s := &fakeSlider{max: max}
	f.sliders[name] = s
	f.order = append(f.order, name)
	return s
}

func TestBind_CreatesTwelveSlidersWithRanges(t *testing.T) {
	f := newFakeFactory()
	tu := New(DefaultMaskBounds())
	tu.Bind(f)

	if len(f.order) != 12 {
		t.Fatalf("created %d sliders, want 12", len(f.order))
	}

	for i, name := range SliderNames() {
		if f.order[i] != name {
			t.Errorf("slider %d = %q, want %q", i, f.order[i], name)
		}
		s := f.sliders[name]
		want := MaxSaturation
		if name[len(name)-1] == 'H' {
			want = MaxHue
		}
		if s.max != want {
			t.Errorf("%s max = %d, want %d", name, s.max, want)
		}
	}
}

func TestBind_InitialisesFromBounds(t *testing.T) {
	f := newFakeFactory()
	tu := New(DefaultMaskBounds())
	tu.Bind(f)

	tests := map[string]int{
		"hole_low_V":  16,
		"hole_high_H": 179,
		"wire_low_V":  96,
		"wire_high_S": 255,
		"wire_low_H":  0,
	}
	for name, want := range tests {
		if got := f.sliders[name].pos; got != want {
			t.Errorf("%s pos = %d, want %d", name, got, want)
		}
	}
}

func TestSync_CopiesSliderPositions(t *testing.T) {
	f := newFakeFactory()
	tu := New(DefaultMaskBounds())
	tu.Bind(f)

	if tu.Sync() {
		t.Error("Sync() reported a change with untouched sliders")
	}

	f.sliders["hole_low_H"].SetPos(42)
	f.sliders["wire_high_V"].SetPos(200)

	if !tu.Sync() {
		t.Fatal("Sync() should report a change")
	}

	b := tu.Bounds()
	if b.Hole.Low.H != 42 {
		t.Errorf("Hole.Low.H = %d, want 42", b.Hole.Low.H)
	}
	if b.Wire.High.V != 200 {
		t.Errorf("Wire.High.V = %d, want 200", b.Wire.High.V)
	}
	if b.Hole.Low.V != 16 {
		t.Errorf("Hole.Low.V = %d, want unchanged 16", b.Hole.Low.V)
	}
}

func TestSync_AllowsInvertedRange(t *testing.T) {
	f := newFakeFactory()
	tu := New(DefaultMaskBounds())
	tu.Bind(f)

	f.sliders["hole_low_S"].SetPos(200)
	f.sliders["hole_high_S"].SetPos(10)
	tu.Sync()

	b := tu.Bounds()
	if b.Hole.Low.S != 200 || b.Hole.High.S != 10 {
		t.Errorf("inverted range not kept: low=%d high=%d", b.Hole.Low.S, b.Hole.High.S)
	}
}

func TestBounds_ReturnsCopy(t *testing.T) {
	tu := New(DefaultMaskBounds())

	b := tu.Bounds()
	b.Hole.Low.V = 99

	if tu.Bounds().Hole.Low.V != 16 {
		t.Error("mutating the returned bounds changed the tuner")
	}
}

func TestRange_Empty(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want bool
	}{
		{"default hole", DefaultMaskBounds().Hole, false},
		{"single value", Range{Low: HSV{10, 20, 30}, High: HSV{10, 20, 30}}, false},
		{"hue crossed", Range{Low: HSV{H: 100}, High: HSV{H: 50, S: 255, V: 255}}, true},
		{"value crossed", Range{Low: HSV{V: 200}, High: HSV{H: 179, S: 255, V: 10}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

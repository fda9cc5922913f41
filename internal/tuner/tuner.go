package tuner

// Slider is a bounded integer control. *gocv.Trackbar satisfies it.
type Slider interface {
	GetPos() int
	SetPos(pos int)
}

// SliderFactory creates a named slider ranging over [0, max].
type SliderFactory interface {
	NewSlider(name string, max int) Slider
}

// binding ties one slider to one integer of the bounds.
type binding struct {
	name   string
	max    int
	field  func(b *MaskBounds) *int
	slider Slider
}

// Tuner owns the mask bounds and keeps them in step with the sliders.
// It is only touched from the frame loop goroutine.
type Tuner struct {
	bounds   MaskBounds
	bindings []binding
}

// New creates a Tuner starting at the given bounds.
func New(initial MaskBounds) *Tuner {
	return &Tuner{bounds: initial}
}

// Bounds returns a copy of the current bounds.
func (t *Tuner) Bounds() MaskBounds {
	return t.bounds
}

// Bind creates the twelve sliders through f, initialised from the current bounds.
func (t *Tuner) Bind(f SliderFactory) {
	t.bindings = t.bindings[:0]
	for _, bd := range layout() {
		bd.slider = f.NewSlider(bd.name, bd.max)
		bd.slider.SetPos(*bd.field(&t.bounds))
		t.bindings = append(t.bindings, bd)
	}
}

// Sync copies slider positions into the bounds and reports whether anything
// changed. Call it after the GUI event pump has run.
func (t *Tuner) Sync() bool {
	changed := false
	for _, bd := range t.bindings {
		p := bd.field(&t.bounds)
		if pos := bd.slider.GetPos(); pos != *p {
			*p = pos
			changed = true
		}
	}
	return changed
}

// SliderNames lists the slider names in creation order.
func SliderNames() []string {
	l := layout()
	names := make([]string, len(l))
	for i, bd := range l {
		names[i] = bd.name
	}
	return names
}

func layout() []binding {
	return []binding{
		{name: "hole_low_H", max: MaxHue, field: func(b *MaskBounds) *int { return &b.Hole.Low.H }},
		{name: "hole_high_H", max: MaxHue, field: func(b *MaskBounds) *int { return &b.Hole.High.H }},
		{name: "hole_low_S", max: MaxSaturation, field: func(b *MaskBounds) *int { return &b.Hole.Low.S }},
		{name: "hole_high_S", max: MaxSaturation, field: func(b *MaskBounds) *int { return &b.Hole.High.S }},
		{name: "hole_low_V", max: MaxValue, field: func(b *MaskBounds) *int { return &b.Hole.Low.V }},
		{name: "hole_high_V", max: MaxValue, field: func(b *MaskBounds) *int { return &b.Hole.High.V }},

		{name: "wire_low_H", max: MaxHue, field: func(b *MaskBounds) *int { return &b.Wire.Low.H }},
		{name: "wire_high_H", max: MaxHue, field: func(b *MaskBounds) *int { return &b.Wire.High.H }},
		{name: "wire_low_S", max: MaxSaturation, field: func(b *MaskBounds) *int { return &b.Wire.Low.S }},
		{name: "wire_high_S", max: MaxSaturation, field: func(b *MaskBounds) *int { return &b.Wire.High.S }},
		{name: "wire_low_V", max: MaxValue, field: func(b *MaskBounds) *int { return &b.Wire.Low.V }},
		{name: "wire_high_V", max: MaxValue, field: func(b *MaskBounds) *int { return &b.Wire.High.V }},
	}
}

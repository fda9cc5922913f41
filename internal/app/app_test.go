package app

import (
	"context"
	"image"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/wirefeed/holetrack/internal/capture"
	"github.com/wirefeed/holetrack/internal/display"
	"github.com/wirefeed/holetrack/internal/fixtures"
	"github.com/wirefeed/holetrack/internal/store"
	"github.com/wirefeed/holetrack/internal/tracker"
	"github.com/wirefeed/holetrack/internal/tuner"
)

// darkHoleConfig thresholds the black background as "hole", so after
// inversion the white square is the tracked foreground.
func darkHoleConfig() Config {
	cfg := DefaultConfig()
	cfg.Bounds.Hole.Low = tuner.HSV{H: 0, S: 0, V: 0}
	cfg.Bounds.Hole.High = tuner.HSV{H: tuner.MaxHue, S: tuner.MaxSaturation, V: 100}
	return cfg
}

func diagonalFrames(t *testing.T) []*gocv.Mat {
	t.Helper()
	frames := fixtures.DiagonalSequence(200, 200, 3, 40, 5, image.Pt(20, 20))
	t.Cleanup(func() { fixtures.CloseAll(frames) })
	return frames
}

type observations struct {
	frames int
	obs    []tracker.Observation
}

func (p *observations) PublishFrame(frame gocv.Mat)                { p.frames++ }
func (p *observations) PublishObservation(obs tracker.Observation) { p.obs = append(p.obs, obs) }

func TestRun_DiagonalSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := capture.NewMockCamera(diagonalFrames(t), false)
	sink := display.NewHeadless()
	pub := &observations{}

	a := New(darkHoleConfig(), Deps{Camera: cam, Sink: sink, Publisher: pub})
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sink.Frames != 3 {
		t.Errorf("sink showed %d frames, want 3", sink.Frames)
	}
	if pub.frames != 3 || len(pub.obs) != 3 {
		t.Fatalf("published %d frames / %d observations, want 3/3", pub.frames, len(pub.obs))
	}

	want := []image.Point{{39, 39}, {44, 44}, {49, 49}}
	marks := 0
	for i, obs := range pub.obs {
		if !obs.Accepted {
			t.Fatalf("frame %d rejected, area %f", i, obs.Area)
		}
		if obs.Centroid != want[i] {
			t.Errorf("frame %d centroid = %v, want %v", i, obs.Centroid, want[i])
		}
		if obs.Mark != nil {
			marks++
		}
	}
	if pub.obs[0].Mark != nil {
		t.Error("first frame should not emit a mark")
	}
	if marks != 2 {
		t.Errorf("marks = %d, want 2", marks)
	}

	if cam.IsOpen() {
		t.Error("camera should be closed after Run() returns")
	}
}

func TestRun_EscStops(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := capture.NewMockCamera(diagonalFrames(t), true)
	sink := display.NewHeadless()
	sink.PressAfter(2, display.EscKey)

	a := New(darkHoleConfig(), Deps{Camera: cam, Sink: sink})
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if a.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", a.Frames())
	}
}

func TestRun_ContextCancel(t *testing.T) {
	cam := capture.NewMockCamera(nil, true)
	a := New(darkHoleConfig(), Deps{Camera: cam, Sink: display.NewHeadless()})
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if a.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", a.Frames())
	}
}

func TestRun_OpenFailure(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	cam.FailOpen(errors.New("no such device"))

	a := New(DefaultConfig(), Deps{Camera: cam, Sink: display.NewHeadless()})
	defer a.Close()

	err := a.Run(context.Background())
	if !errors.Is(err, capture.ErrOpenFailed) {
		t.Errorf("Run() error = %v, want ErrOpenFailed", err)
	}
}

func TestRun_OpenFailureLeavesNoSession(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "track.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	cam := capture.NewMockCamera(nil, false)
	cam.FailOpen(errors.New("no such device"))

	a := New(DefaultConfig(), Deps{
		Camera:       cam,
		Sink:         display.NewHeadless(),
		OpenRecorder: SessionRecorderFunc(st, tracker.ModeCircle, tracker.DefaultMinArea),
	})
	defer a.Close()

	if err := a.Run(context.Background()); !errors.Is(err, capture.ErrOpenFailed) {
		t.Fatalf("Run() error = %v, want ErrOpenFailed", err)
	}
	if a.Recording() {
		t.Error("recorder started although the camera never opened")
	}

	sessions, err := st.Sessions().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d after open failure, want 0", len(sessions))
	}
}

func TestRun_OpenRecorderUsesCameraSource(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	st, err := store.New(filepath.Join(t.TempDir(), "track.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	var sources []string
	open := SessionRecorderFunc(st, tracker.ModeLine, tracker.DefaultMinArea)

	a := New(darkHoleConfig(), Deps{
		Camera: capture.NewMockCamera(diagonalFrames(t), false),
		Sink:   display.NewHeadless(),
		OpenRecorder: func(source string) (Recorder, error) {
			sources = append(sources, source)
			return open(source)
		},
	})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if len(sources) != 1 || sources[0] != "mock" {
		t.Fatalf("OpenRecorder calls = %v, want [mock]", sources)
	}

	sessions, err := st.Sessions().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 1 || sessions[0].Samples != 3 || sessions[0].TrailMode != "line" {
		t.Errorf("sessions = %+v, want one line-mode session with 3 samples", sessions)
	}
}

func TestRun_OpenRecorderError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	boom := errors.New("read-only database")
	a := New(darkHoleConfig(), Deps{
		Camera: capture.NewMockCamera(diagonalFrames(t), false),
		Sink:   display.NewHeadless(),
		OpenRecorder: func(string) (Recorder, error) {
			return nil, boom
		},
	})
	defer a.Close()

	if err := a.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
	if a.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", a.Frames())
	}
}

func TestNew_CameraFromConfig(t *testing.T) {
	tests := []struct {
		name   string
		config func() Config
		want   string
	}{
		{"default device", DefaultConfig, "device:2"},
		{"video file", func() Config {
			c := DefaultConfig()
			c.VideoFile = "rig.mp4"
			return c
		}, "file:rig.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.config(), Deps{Sink: display.NewHeadless()})
			defer a.Close()

			if got := a.Source(); got != tt.want {
				t.Errorf("Source() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStep_EdgeView(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	tests := []struct {
		name      string
		edges     bool
		wantShown int
	}{
		{"off by default", false, 0},
		{"on", true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := darkHoleConfig()
			cfg.Edges = tt.edges
			sink := display.NewHeadless()
			pub := &observations{}

			a := New(cfg, Deps{Camera: capture.NewMockCamera(diagonalFrames(t), false), Sink: sink, Publisher: pub})
			defer a.Close()

			if err := a.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if sink.EdgeFrames != tt.wantShown {
				t.Errorf("EdgeFrames = %d, want %d", sink.EdgeFrames, tt.wantShown)
			}
			// The edge view never feeds the centroid.
			if len(pub.obs) != 3 || pub.obs[2].Centroid != image.Pt(49, 49) {
				t.Errorf("observations = %+v", pub.obs)
			}
		})
	}
}

func TestStep_BlurKeepsCentroid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cfg := darkHoleConfig()
	cfg.Blur = true
	pub := &observations{}

	a := New(cfg, Deps{Camera: capture.NewMockCamera(diagonalFrames(t), false), Sink: display.NewHeadless(), Publisher: pub})
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(pub.obs) != 3 {
		t.Fatalf("observations = %d, want 3", len(pub.obs))
	}
	for i, obs := range pub.obs {
		want := 39 + 5*i
		if !obs.Accepted {
			t.Fatalf("frame %d rejected", i)
		}
		// A symmetric blur of a centred square moves the centroid by at most a pixel.
		if d := obs.Centroid.X - want; d < -1 || d > 1 {
			t.Errorf("frame %d centroid = %v, want about (%d,%d)", i, obs.Centroid, want, want)
		}
	}
}

func TestRun_RequiresSink(t *testing.T) {
	a := New(DefaultConfig(), Deps{Camera: capture.NewMockCamera(nil, false)})
	defer a.Close()

	if err := a.Run(context.Background()); err == nil {
		t.Error("Run() without a sink should fail")
	}
}

type slider struct{ pos int }

func (s *slider) GetPos() int    { return s.pos }
func (s *slider) SetPos(pos int) { s.pos = pos }

type sliders map[string]*slider

func (f sliders) NewSlider(name string, max int) tuner.Slider {
	s := &slider{}
	f[name] = s
	return s
}

// dragSink moves trackbars during the first key poll, as a user would.
type dragSink struct {
	*display.Headless
	sliders sliders
	polls   int
}

func (d *dragSink) WaitKey(delayMs int) int {
	d.polls++
	if d.polls == 1 {
		d.sliders["hole_low_V"].SetPos(0)
		d.sliders["hole_high_V"].SetPos(100)
	}
	return d.Headless.WaitKey(delayMs)
}

func TestRun_TrackbarChangesApplyNextFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := capture.NewMockCamera(diagonalFrames(t), false)
	sl := sliders{}
	sink := &dragSink{Headless: display.NewHeadless(), sliders: sl}
	pub := &observations{}

	a := New(DefaultConfig(), Deps{Camera: cam, Sink: sink, Sliders: sl, Publisher: pub})
	defer a.Close()

	if got := sl["hole_low_V"].pos; got != 16 {
		t.Fatalf("hole_low_V initial pos = %d, want 16", got)
	}

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	b := a.Tuner().Bounds()
	if b.Hole.Low.V != 0 || b.Hole.High.V != 100 {
		t.Errorf("bounds not synced from sliders: %+v", b.Hole)
	}

	// Frame 1 tracks the background (default bounds); frame 2 the square.
	if pub.obs[0].Centroid == image.Pt(39, 39) {
		t.Error("frame 1 should not see the new bounds yet")
	}
	if got := pub.obs[1].Centroid; got != image.Pt(44, 44) {
		t.Errorf("frame 2 centroid = %v, want (44,44)", got)
	}
}

func TestStep_SizeMismatchShowsRawFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	sink := display.NewHeadless()
	a := New(darkHoleConfig(), Deps{Camera: capture.NewMockCamera(nil, false), Sink: sink})
	defer a.Close()

	big := fixtures.SolidFrame(200, 200, fixtures.Black)
	defer big.Close()
	small := fixtures.SolidFrame(100, 120, fixtures.Black)
	defer small.Close()

	if res, err := a.Step(big); err != nil || !res.Composited {
		t.Fatalf("Step(first) = %+v, %v", res, err)
	}

	res, err := a.Step(small)
	if err != nil {
		t.Fatalf("Step(mismatched) error = %v", err)
	}
	if res.Composited {
		t.Error("mismatched frame should not be composited")
	}
	if sink.Frames != 2 {
		t.Errorf("sink showed %d frames, want 2", sink.Frames)
	}
	if got := a.Trail().Size(); got != image.Pt(200, 200) {
		t.Errorf("trail size = %v, want fixed at first frame (200,200)", got)
	}
}

func TestRun_RecordsSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	st, err := store.New(filepath.Join(t.TempDir(), "track.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	cam := capture.NewMockCamera(diagonalFrames(t), false)
	rec, err := NewSessionRecorder(st, cam.Source(), tracker.ModeCircle, tracker.DefaultMinArea)
	if err != nil {
		t.Fatalf("NewSessionRecorder() error = %v", err)
	}

	a := New(darkHoleConfig(), Deps{Camera: cam, Sink: display.NewHeadless(), Recorder: rec})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	sess, err := st.Sessions().GetByID(rec.SessionID())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sess.Samples != 3 || sess.EndedAt == nil {
		t.Errorf("session = %+v, want 3 samples and an end time", sess)
	}
	if sess.Source != "mock" {
		t.Errorf("session source = %q, want mock", sess.Source)
	}

	samples, err := st.Samples().ListBySession(rec.SessionID())
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("recorded %d samples, want 3", len(samples))
	}
	if samples[0].Drawn || !samples[1].Drawn || !samples[2].Drawn {
		t.Errorf("drawn flags = %v %v %v, want false true true", samples[0].Drawn, samples[1].Drawn, samples[2].Drawn)
	}
	if samples[2].X != 49 || samples[2].Y != 49 {
		t.Errorf("last sample = (%d,%d), want (49,49)", samples[2].X, samples[2].Y)
	}
}

func TestSessionRecorder_SkipsRejected(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "track.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	rec, err := NewSessionRecorder(st, "mock", tracker.ModeLine, tracker.DefaultMinArea)
	if err != nil {
		t.Fatalf("NewSessionRecorder() error = %v", err)
	}

	rec.Record(tracker.Observation{Area: 5})
	rec.Record(tracker.Observation{Accepted: true, Centroid: image.Pt(3, 4), Area: 20000})
	rec.Close()

	samples, _ := st.Samples().ListBySession(rec.SessionID())
	if len(samples) != 1 {
		t.Fatalf("recorded %d samples, want 1", len(samples))
	}
	if samples[0].Seq != 0 || samples[0].X != 3 || samples[0].Y != 4 {
		t.Errorf("sample = %+v", samples[0])
	}
}

package app

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/wirefeed/holetrack/internal/capture"
	"github.com/wirefeed/holetrack/internal/display"
	"github.com/wirefeed/holetrack/internal/log"
	"github.com/wirefeed/holetrack/internal/tracker"
	"github.com/wirefeed/holetrack/internal/tuner"
	"github.com/wirefeed/holetrack/internal/vision"
)

// Recorder persists accepted observations.
type Recorder interface {
	Record(obs tracker.Observation) error
	Close() error
}

// Publisher receives every composited frame and observation, e.g. the monitor server.
type Publisher interface {
	PublishFrame(frame gocv.Mat)
	PublishObservation(obs tracker.Observation)
}

// RecorderFunc starts a recording for the named capture source.
type RecorderFunc func(source string) (Recorder, error)

// Deps are the collaborators the loop talks to. Nil fields fall back to
// defaults derived from Config, except Sink which is required.
type Deps struct {
	Camera   capture.Camera
	Sink     display.Sink
	Sliders  tuner.SliderFactory
	Recorder Recorder
	// OpenRecorder is called by Run once the camera is open, so a source
	// that fails to open never leaves a recording behind. Ignored when
	// Recorder is set.
	OpenRecorder RecorderFunc
	Publisher    Publisher
}

// StepResult reports what one iteration produced.
type StepResult struct {
	Observation tracker.Observation
	Contours    int
	Edges       int  // edge pixels in the hole mask, 0 when the edge view is off
	Composited  bool // false when the trail could not be overlaid
}

// App owns the per-frame pipeline and all cross-frame state: the bounds,
// the last centroid and the trail canvas. It is not safe for concurrent use.
type App struct {
	config    Config
	camera    capture.Camera
	sink      display.Sink
	tuner     *tuner.Tuner
	processor *vision.Processor
	contours  vision.ContourStage
	edges     vision.EdgeStage
	tracker   *tracker.Tracker
	trail     *tracker.Trail
	recorder  Recorder
	openRec   RecorderFunc
	publisher Publisher
	composite gocv.Mat
	edgeView  gocv.Mat
	frames    int
	log       *slog.Logger
}

// New wires an App from config and deps.
func New(config Config, deps Deps) *App {
	camera := deps.Camera
	if camera == nil {
		if config.VideoFile != "" {
			camera = capture.NewFileCamera(config.VideoFile)
		} else {
			camera = capture.NewCamera(config.DeviceID)
		}
	}

	if config.WaitMs <= 0 {
		config.WaitMs = display.DefaultWaitMs
	}

	a := &App{
		config:    config,
		camera:    camera,
		sink:      deps.Sink,
		tuner:     tuner.New(config.Bounds),
		processor: vision.NewProcessor(),
		contours:  vision.ContourStage{Enabled: config.Contours},
		edges:     vision.EdgeStage{Enabled: config.Edges},
		tracker:   tracker.New(config.MinArea),
		trail:     tracker.NewTrail(config.TrailMode),
		recorder:  deps.Recorder,
		openRec:   deps.OpenRecorder,
		publisher: deps.Publisher,
		composite: gocv.NewMat(),
		edgeView:  gocv.NewMat(),
		log:       log.With("source", camera.Source()),
	}
	a.processor.Blur.Enabled = config.Blur
	a.trail.ClearEvery = config.ClearEvery

	if deps.Sliders != nil {
		a.tuner.Bind(deps.Sliders)
	}

	return a
}

// Run opens the capture source and loops until Esc, end of stream or ctx
// cancellation. An open failure is returned wrapping capture.ErrOpenFailed.
func (a *App) Run(ctx context.Context) error {
	if a.sink == nil {
		return errors.New("app: no display sink")
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.log.Warn("error closing camera", "err", err)
		}
	}()

	if a.recorder == nil && a.openRec != nil {
		rec, err := a.openRec(a.camera.Source())
		if err != nil {
			return errors.Wrap(err, "start recorder")
		}
		a.recorder = rec
	}

	a.log.Info("tracking started",
		"trail_mode", a.trail.Mode,
		"contours", a.contours.Enabled,
		"blur", a.processor.Blur.Enabled,
		"edges", a.edges.Enabled,
		"recording", a.recorder != nil,
	)
	a.checkBounds()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("tracking cancelled", "frames", a.frames)
			return nil
		default:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrEndOfStream) {
				a.log.Info("capture ended", "reason", err, "frames", a.frames)
				return nil
			}
			return errors.Wrap(err, "read frame")
		}

		_, err = a.Step(*frame)
		frame.Close()
		if err != nil {
			return err
		}

		key := a.sink.WaitKey(a.config.WaitMs)
		if a.tuner.Sync() {
			a.log.Debug("bounds changed", "bounds", a.tuner.Bounds())
			a.checkBounds()
		}
		if key == display.EscKey {
			a.log.Info("esc key is pressed by user", "frames", a.frames)
			return nil
		}
	}
}

// checkBounds warns about ranges that can never match.
func (a *App) checkBounds() {
	b := a.tuner.Bounds()
	if b.Hole.Empty() {
		a.log.Warn("hole range is empty, whole frame becomes foreground", "low", b.Hole.Low, "high", b.Hole.High)
	}
	if b.Wire.Empty() {
		a.log.Warn("wire range is empty, whole frame becomes foreground", "low", b.Wire.Low, "high", b.Wire.High)
	}
}

// Step runs one frame through the pipeline and shows the result. It does
// not poll the keyboard.
func (a *App) Step(frame gocv.Mat) (StepResult, error) {
	var res StepResult

	a.trail.Init(frame)

	masks, err := a.processor.Process(frame, a.tuner.Bounds())
	if err != nil {
		return res, errors.Wrapf(err, "process frame %d", a.frames)
	}

	res.Contours = a.contours.Apply(&masks.Wire)
	if a.contours.Enabled {
		a.log.Debug("wire contours", "count", res.Contours)
	}

	res.Edges = a.edges.Apply(masks.Hole, &a.edgeView)

	res.Observation = a.tracker.Update(vision.MomentsOf(masks.Hole))
	obs := res.Observation
	if obs.Mark != nil {
		a.trail.Draw(*obs.Mark)
	}

	if obs.Accepted && a.recorder != nil {
		if err := a.recorder.Record(obs); err != nil {
			a.log.Warn("failed to record centroid", "err", err)
		}
	}

	if err := a.trail.Composite(frame, &a.composite); err != nil {
		a.log.Warn("showing frame without trail", "err", err)
		frame.CopyTo(&a.composite)
	} else {
		res.Composited = true
	}

	a.sink.Show(masks.Hole, a.composite)
	if es, ok := a.sink.(display.EdgeSink); ok && a.edges.Enabled {
		es.ShowEdges(a.edgeView)
	}

	if a.publisher != nil {
		a.publisher.PublishFrame(a.composite)
		a.publisher.PublishObservation(obs)
	}

	a.frames++
	return res, nil
}

// Source describes the capture source, e.g. "device:2".
func (a *App) Source() string {
	return a.camera.Source()
}

// Recording reports whether observations are being recorded.
func (a *App) Recording() bool {
	return a.recorder != nil
}

// Tuner returns the bounds tuner.
func (a *App) Tuner() *tuner.Tuner {
	return a.tuner
}

// Tracker returns the centroid tracker.
func (a *App) Tracker() *tracker.Tracker {
	return a.tracker
}

// Trail returns the trail renderer.
func (a *App) Trail() *tracker.Trail {
	return a.trail
}

// Frames returns the number of frames processed so far.
func (a *App) Frames() int {
	return a.frames
}

// Close releases the pipeline Mats and finishes the recording session.
// The sink is left to its owner.
func (a *App) Close() error {
	var firstErr error
	if a.recorder != nil {
		firstErr = a.recorder.Close()
	}
	a.processor.Close()
	a.trail.Close()
	a.composite.Close()
	a.edgeView.Close()
	return firstErr
}

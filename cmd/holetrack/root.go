package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wirefeed/holetrack/internal/app"
	"github.com/wirefeed/holetrack/internal/capture"
	"github.com/wirefeed/holetrack/internal/display"
	"github.com/wirefeed/holetrack/internal/log"
	"github.com/wirefeed/holetrack/internal/server"
	"github.com/wirefeed/holetrack/internal/store"
	"github.com/wirefeed/holetrack/internal/tracker"
)

// newRootCmd builds the base command when called without any subcommands.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holetrack",
		Short: "Track the feed hole of a wire rig",
		Long: `Reads frames from a webcam or video file, thresholds the hole and wire
colours in HSV and overlays a trail of the hole's centroid. Drag the sliders
in the Control window to tune the bounds live; press Esc to quit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	defaults := app.DefaultConfig()

	cmd.Flags().IntP("device", "d", defaults.DeviceID, "Webcam device index")
	cmd.Flags().StringP("file", "f", "", "Video file to track instead of the webcam")
	cmd.Flags().Bool("contours", defaults.Contours, "Draw wire-mask contours")
	cmd.Flags().Bool("blur", defaults.Blur, "Gaussian-blur the HSV image before thresholding")
	cmd.Flags().Bool("edges", defaults.Edges, "Show the Canny edges of the hole mask in an extra window")
	cmd.Flags().String("trail-mode", string(defaults.TrailMode), "Trail marker: circle or line")
	cmd.Flags().Int("clear-every", 0, "Wipe the trail every N frames (0 = never)")
	cmd.Flags().Float64("min-area", defaults.MinArea, "Minimum zeroth moment for a centroid to count")
	cmd.Flags().Int("wait", defaults.WaitMs, "Key poll timeout in milliseconds")
	cmd.Flags().String("record", "", "Record accepted centroids to this SQLite file")
	cmd.Flags().String("serve", "", "Serve the monitor on this address, e.g. :8080")
	cmd.Flags().Bool("headless", false, "Run without windows or sliders (pair with --serve)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")

	return cmd
}

// Execute runs the root command and maps failures onto exit codes.
// This is called by main.main().
func Execute() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}

	code := exitCode(err)
	if code == exitOpenFailed {
		fmt.Fprintln(os.Stderr, "Cannot open the web cam")
		log.Error("capture open failed", "err", err)
	} else if code != 0 {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

// exitOpenFailed is the status reported when the capture source cannot be opened.
const exitOpenFailed = -1

// exitCode maps the error returned by the command onto a process status.
// Reaching the end of the stream is a normal stop.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, capture.ErrEndOfStream):
		return 0
	case errors.Is(err, capture.ErrOpenFailed):
		return exitOpenFailed
	default:
		return 1
	}
}

// configFromFlags maps the command line onto an app.Config.
func configFromFlags(cmd *cobra.Command) (app.Config, error) {
	config := app.DefaultConfig()
	flags := cmd.Flags()

	config.DeviceID, _ = flags.GetInt("device")
	config.VideoFile, _ = flags.GetString("file")
	config.Contours, _ = flags.GetBool("contours")
	config.Blur, _ = flags.GetBool("blur")
	config.Edges, _ = flags.GetBool("edges")
	config.ClearEvery, _ = flags.GetInt("clear-every")
	config.MinArea, _ = flags.GetFloat64("min-area")
	config.WaitMs, _ = flags.GetInt("wait")
	config.RecordPath, _ = flags.GetString("record")
	config.ServeAddr, _ = flags.GetString("serve")

	modeName, _ := flags.GetString("trail-mode")
	mode, err := tracker.ParseMode(modeName)
	if err != nil {
		return config, err
	}
	config.TrailMode = mode

	if config.ClearEvery < 0 {
		return config, errors.Errorf("--clear-every must not be negative, got %d", config.ClearEvery)
	}

	return config, nil
}

func run(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	log.Init(level)

	config, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var deps app.Deps

	if headless, _ := cmd.Flags().GetBool("headless"); headless {
		deps.Sink = display.NewHeadless()
	} else {
		windows := display.NewWindows()
		defer windows.Close()
		deps.Sink = windows
		deps.Sliders = windows
	}

	var st *store.Store
	if config.RecordPath != "" {
		st, err = store.New(config.RecordPath)
		if err != nil {
			return err
		}
		defer st.Close()

		deps.OpenRecorder = app.SessionRecorderFunc(st, config.TrailMode, config.MinArea)
	}

	if config.ServeAddr != "" {
		hub := server.NewHub()
		deps.Publisher = hub

		srv := server.New(server.Config{Hub: hub, Store: st})
		go func() {
			log.Info("monitor listening", "addr", config.ServeAddr)
			if err := srv.ListenAndServe(ctx, config.ServeAddr); err != nil {
				log.Error("monitor server failed", "err", err)
			}
		}()
	}

	a := app.New(config, deps)
	defer a.Close()

	return a.Run(ctx)
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/teslashibe/pathsense/internal/app"
	"github.com/teslashibe/pathsense/internal/log"
	"github.com/teslashibe/pathsense/pkg/assist"
	"github.com/teslashibe/pathsense/pkg/camera"
	"github.com/teslashibe/pathsense/pkg/camera/webcam"
	"github.com/teslashibe/pathsense/pkg/metrics"
	"github.com/teslashibe/pathsense/pkg/speech"
)

func runAssist(cmd *cobra.Command, _ []string) error {
	logger := log.L()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, err := app.NewProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := app.Preflight(ctx, cfg, provider, logger); err != nil {
		return err
	}

	speaker := speech.New(os.Stdout, app.SpeechFactory(cfg, logger), logger)
	defer speaker.Close()

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	var display camera.Display = camera.Headless{}
	if !cfg.Headless {
		display = webcam.NewWindow(cfg.WindowTitle)
	}

	controller := assist.New(
		webcam.NewCapture(cfg.CameraID, cfg.CameraMode(), logger),
		display,
		app.NewDetector(cfg, provider, logger),
		speaker,
		assist.WithInterval(cfg.Interval),
		assist.WithOutput(os.Stdout),
		assist.WithMetrics(m),
		assist.WithLogger(logger),
	)

	return controller.Run(ctx)
}

package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/teslashibe/pathsense/internal/app"
	"github.com/teslashibe/pathsense/internal/log"
	"github.com/teslashibe/pathsense/pkg/assist"
	"github.com/teslashibe/pathsense/pkg/camera"
	"github.com/teslashibe/pathsense/pkg/speech"
)

var describeCmd = &cobra.Command{
	Use:   "describe <image>",
	Short: "Analyze a single JPEG or PNG image and speak the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	logger := log.L()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	img, err := decodeImage(args[0])
	if err != nil {
		return err
	}

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

	fmt.Println("[ANALYZING] Processing frame...")
	result, err := app.NewDetector(cfg, provider, logger).Analyze(ctx, camera.NewImageFrame(img))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		speaker.Speak(context.WithoutCancel(ctx), assist.PhraseAnalysisErr)
		return err
	}
	speaker.Speak(ctx, result)
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

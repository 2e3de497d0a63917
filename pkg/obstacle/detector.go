// Package obstacle turns camera frames into short spoken-style descriptions
// of what stands in the user's way.
package obstacle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/pathsense/pkg/camera"
	"github.com/teslashibe/pathsense/pkg/inference"
)

// Prompt is the instruction sent with every frame.
const Prompt = "You are assisting a visually impaired person. " +
	"Analyze this image and describe any obstacles directly in the person's path. " +
	"If there are obstacles, specify their position (left, center, or right). " +
	"Be concise and actionable. " +
	"Examples: 'Clear path ahead', 'Obstacle on right, move left', 'Person directly ahead, stop'."

// NoResponse is returned when the model answers with no usable text.
const NoResponse = "No clear response from the system."

// DefaultJPEGQuality is used when no quality option is given.
const DefaultJPEGQuality = 85

// EncodingError reports a frame that could not be encoded for upload.
type EncodingError struct {
	Err error
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode frame: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Option configures a Detector.
type Option func(*Detector)

// WithJPEGQuality sets the upload quality (1-100).
func WithJPEGQuality(q int) Option {
	return func(d *Detector) {
		if q >= 1 && q <= 100 {
			d.quality = q
		}
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(d *Detector) {
		d.model = model
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Detector asks a vision provider about obstacles in a frame.
type Detector struct {
	provider inference.Provider
	quality  int
	model    string
	logger   *slog.Logger
}

// New creates a detector backed by provider.
func New(provider inference.Provider, opts ...Option) *Detector {
	d := &Detector{
		provider: provider,
		quality:  DefaultJPEGQuality,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "obstacle.detector")
	return d
}

// Analyze encodes frame and returns the provider's description of it.
//
// Exactly one provider call is made per invocation, with no retry. An
// encoding failure returns *EncodingError without contacting the provider.
// Provider errors are returned unchanged.
func (d *Detector) Analyze(ctx context.Context, frame camera.Frame) (string, error) {
	if frame == nil {
		return "", &EncodingError{Err: fmt.Errorf("nil frame")}
	}
	img, err := frame.JPEG(d.quality)
	if err != nil {
		return "", &EncodingError{Err: err}
	}
	if len(img) == 0 {
		return "", &EncodingError{Err: inference.ErrNoImage}
	}

	start := time.Now()
	resp, err := d.provider.Vision(ctx, &inference.VisionRequest{
		Image:    img,
		MIMEType: inference.MIMETypeJPEG,
		Prompt:   Prompt,
		Model:    d.model,
	})
	if err != nil {
		return "", err
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Content)
	}
	d.logger.Debug("analysis complete",
		"bytes", len(img),
		"latency", time.Since(start),
		"chars", len(text))

	if text == "" {
		return NoResponse, nil
	}
	return text, nil
}

// Package assist runs the capture, analyze and narrate loop.
//
// The loop is single-threaded: a frame is read, analyzed at most once per
// interval, shown, and released before the next read. Analysis and speech
// block the loop, so at most one request is ever in flight.
package assist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/pathsense/internal/apierr"
	"github.com/teslashibe/pathsense/pkg/camera"
	"github.com/teslashibe/pathsense/pkg/metrics"
	"github.com/teslashibe/pathsense/pkg/speech"
)

// Phrases spoken by the controller.
const (
	PhraseActivated   = "Assistive AI system activated."
	PhraseAnalysisErr = "Error analyzing the scene."
	PhraseQuit        = "Shutting down assistive AI system."
	PhraseInterrupted = "System interrupted."
)

// QuitKey ends the session when pressed in the display window.
const QuitKey = 'q'

// DefaultInterval is the minimum spacing between analyses.
const DefaultInterval = 3 * time.Second

var (
	// ErrCameraOpen is returned by Run when the camera cannot be opened.
	ErrCameraOpen = errors.New("assist: could not open camera")

	// ErrStopped is returned by Run on a controller that already ran.
	ErrStopped = errors.New("assist: controller already stopped")

	// ErrRunning is returned by Run while a session is in progress.
	ErrRunning = errors.New("assist: controller already running")
)

// Analyzer describes a frame. *obstacle.Detector implements it.
type Analyzer interface {
	Analyze(ctx context.Context, frame camera.Frame) (string, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the minimum time between analyses.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithOutput sets where banners and status lines are printed.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) {
		if w != nil {
			c.out = w
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMetrics records loop activity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns the camera and display for one session.
type Controller struct {
	source   camera.Source
	display  camera.Display
	detector Analyzer
	speaker  speech.Announcer

	interval time.Duration
	out      io.Writer
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *slog.Logger
	session  string

	mu    sync.Mutex
	state State
}

// New creates an idle controller. A nil display runs headless.
func New(source camera.Source, display camera.Display, detector Analyzer, speaker speech.Announcer, opts ...Option) *Controller {
	if display == nil {
		display = camera.Headless{}
	}
	c := &Controller{
		source:   source,
		display:  display,
		detector: detector,
		speaker:  speaker,
		interval: DefaultInterval,
		out:      os.Stdout,
		now:      time.Now,
		logger:   slog.Default(),
		session:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "assist.controller", "session", c.session)
	return c
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the session id attached to log lines.
func (c *Controller) Session() string {
	return c.session
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.logger.Debug("state changed", "state", s.String())
}

// Run opens the camera and loops until the user quits, the camera fails or
// ctx is cancelled. Cancelling ctx also aborts an in-flight analysis.
//
// Camera and display are released exactly once on every path. Run can be
// called only once per controller.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
	case StateRunning:
		c.mu.Unlock()
		return ErrRunning
	default:
		c.mu.Unlock()
		return ErrStopped
	}
	c.state = StateRunning
	c.mu.Unlock()

	if err := c.source.Open(); err != nil {
		c.logger.Error("could not open camera", "error", err)
		fmt.Fprintln(c.out, "[ERROR] Could not open webcam.")
		c.display.Close()
		c.setState(StateStopped)
		return fmt.Errorf("%w: %v", ErrCameraOpen, err)
	}
	defer c.shutdown()

	c.printBanner()
	c.say(ctx, PhraseActivated)

	var last time.Time
	for {
		if ctx.Err() != nil {
			c.interrupted(ctx)
			return nil
		}

		frame, err := c.source.Read()
		if err != nil {
			c.logger.Error("could not read frame", "error", err)
			fmt.Fprintln(c.out, "[ERROR] Could not read frame.")
			return nil
		}
		c.metrics.Frame()

		if now := c.now(); last.IsZero() || now.Sub(last) >= c.interval {
			last = now
			c.analyze(ctx, frame)
		}

		if err := c.display.Show(frame); err != nil {
			c.logger.Debug("display failed", "error", err)
		}
		key := c.display.PollKey()
		frame.Close()

		if key >= 0 && key&0xFF == QuitKey {
			c.logger.Info("quit requested")
			c.say(ctx, PhraseQuit)
			return nil
		}
	}
}

// analyze runs one cycle. Failures are narrated and never end the session,
// except when ctx was cancelled.
func (c *Controller) analyze(ctx context.Context, frame camera.Frame) {
	fmt.Fprintln(c.out, "\n[ANALYZING] Processing frame...")

	start := time.Now()
	result, err := c.detector.Analyze(ctx, frame)
	c.metrics.Analysis(time.Since(start), err)

	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("analysis aborted", "error", err)
			return
		}
		if kind := apierr.Kind(err); kind != "" {
			c.logger.Warn("analysis failed", "error", err, "kind", kind)
		} else {
			c.logger.Warn("analysis failed", "error", err)
		}
		fmt.Fprintf(c.out, "[WARNING] Analysis error: %v\n", err)
		c.say(ctx, PhraseAnalysisErr)
		return
	}
	c.say(ctx, result)
}

func (c *Controller) interrupted(ctx context.Context) {
	c.logger.Info("interrupted", "cause", context.Cause(ctx))
	fmt.Fprintln(c.out, "\n[INTERRUPTED] User stopped the system")
	c.say(context.WithoutCancel(ctx), PhraseInterrupted)
}

func (c *Controller) say(ctx context.Context, text string) {
	c.speaker.Speak(ctx, text)
	c.metrics.Utterance(c.speaker.Mode())
}

func (c *Controller) shutdown() {
	c.setState(StateShuttingDown)

	if err := c.source.Close(); err != nil {
		c.logger.Warn("camera release failed", "error", err)
	}
	if err := c.display.Close(); err != nil {
		c.logger.Warn("display close failed", "error", err)
	}

	rule := strings.Repeat("=", 50)
	fmt.Fprintf(c.out, "\n%s\nSYSTEM SHUTDOWN COMPLETE\n%s\n", rule, rule)
	c.setState(StateStopped)
}

func (c *Controller) printBanner() {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(c.out, "%s\nASSISTIVE AI SYSTEM - ACTIVE\n%s\n", rule, rule)
	fmt.Fprintf(c.out, "Analyzing frames every %g seconds\n", c.interval.Seconds())
	fmt.Fprintf(c.out, "Press '%c' to quit\n\n", QuitKey)
	c.logger.Info("session started", "interval", c.interval)
}

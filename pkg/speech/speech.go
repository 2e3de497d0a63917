// Package speech narrates analysis results to the user.
//
// An Announcer always echoes what it says to the console. The Audible
// variant also drives a speech Engine; when no engine can be built the
// package falls back to Console so narration never stops.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Announcer modes, used as metric labels.
const (
	ModeConsole = "console"
	ModeAudible = "audible"
)

// Sentinel errors for engine construction.
var (
	// ErrNoEngine is returned when no local synthesizer is installed.
	ErrNoEngine = errors.New("speech: no speech synthesizer found")

	// ErrNoPlayer is returned when no audio player is installed.
	ErrNoPlayer = errors.New("speech: no audio player found")

	// ErrDisabled is returned by the factory for the "none" engine.
	ErrDisabled = errors.New("speech: audio disabled")
)

// Announcer speaks text. Speak never fails; problems are logged.
type Announcer interface {
	// Speak prints "AI: <text>" and, when audible, blocks until playback ends.
	Speak(ctx context.Context, text string)

	// Mode reports ModeConsole or ModeAudible.
	Mode() string

	// Close releases the engine.
	Close() error
}

// Engine turns text into sound and blocks until it has been played.
type Engine interface {
	Say(ctx context.Context, text string) error
	Close() error
}

// EngineFactory builds an Engine.
type EngineFactory func() (Engine, error)

// New returns an Audible announcer when factory succeeds, otherwise a
// Console announcer after logging one warning. A nil factory means console only.
func New(out io.Writer, factory EngineFactory, logger *slog.Logger) Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "speech.announcer")
	console := NewConsole(out)

	if factory == nil {
		return console
	}
	engine, err := factory()
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			logger.Info("audio narration disabled")
		} else {
			logger.Warn("speech engine unavailable, using console only", "error", err)
		}
		return console
	}
	return &Audible{console: console, engine: engine, logger: logger}
}

// Console prints narration to a writer.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a console announcer writing to out.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = io.Discard
	}
	return &Console{out: out}
}

// Speak prints the line.
func (c *Console) Speak(_ context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "AI: %s\n", text)
}

// Mode returns ModeConsole.
func (c *Console) Mode() string { return ModeConsole }

// Close does nothing.
func (c *Console) Close() error { return nil }

// Audible prints and plays narration.
type Audible struct {
	console *Console
	engine  Engine
	logger  *slog.Logger
}

// Speak prints text then plays it. Playback errors are logged.
func (a *Audible) Speak(ctx context.Context, text string) {
	a.console.Speak(ctx, text)
	if err := a.engine.Say(ctx, text); err != nil {
		if ctx.Err() != nil {
			a.logger.Debug("playback interrupted", "error", err)
			return
		}
		a.logger.Warn("speech playback failed", "error", err)
	}
}

// Mode returns ModeAudible.
func (a *Audible) Mode() string { return ModeAudible }

// Close releases the engine.
func (a *Audible) Close() error {
	return a.engine.Close()
}

var (
	_ Announcer = (*Console)(nil)
	_ Announcer = (*Audible)(nil)
)

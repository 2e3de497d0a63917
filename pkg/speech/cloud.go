package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teslashibe/pathsense/pkg/tts"
)

// Cloud synthesizes with a tts.Provider and plays the result with ffplay
// or mpv.
type Cloud struct {
	provider tts.Provider
	player   string
	run      runFunc
}

// NewCloud pairs provider with a local audio player.
func NewCloud(provider tts.Provider) (*Cloud, error) {
	return newCloud(provider, lookPath, runCommand)
}

func newCloud(provider tts.Provider, look lookFunc, run runFunc) (*Cloud, error) {
	player, ok := findProgram(look, "ffplay", "mpv")
	if !ok {
		return nil, ErrNoPlayer
	}
	return &Cloud{provider: provider, player: player, run: run}, nil
}

// Say synthesizes text and plays it to completion.
func (c *Cloud) Say(ctx context.Context, text string) error {
	result, err := c.provider.Synthesize(ctx, text)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "pathsense-*"+result.Format.Encoding.Extension())
	if err != nil {
		return fmt.Errorf("speech: temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(result.Audio); err != nil {
		f.Close()
		return fmt.Errorf("speech: write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("speech: write audio: %w", err)
	}

	return c.run(ctx, c.player, c.playerArgs(path)...)
}

func (c *Cloud) playerArgs(path string) []string {
	if filepath.Base(c.player) == "mpv" {
		return []string{"--no-video", "--really-quiet", path}
	}
	return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
}

// Close releases the provider.
func (c *Cloud) Close() error {
	return c.provider.Close()
}

var _ Engine = (*Cloud)(nil)

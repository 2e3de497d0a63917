package speech

import (
	"context"
	"path/filepath"
	"strconv"
)

// Local speaks through the platform synthesizer: espeak-ng or espeak on
// Linux, say on macOS.
type Local struct {
	program string
	rate    int
	voice   string
	run     runFunc
}

// NewLocal locates a synthesizer. rate is in words per minute.
func NewLocal(rate int, voice string) (*Local, error) {
	return newLocal(rate, voice, lookPath, runCommand)
}

func newLocal(rate int, voice string, look lookFunc, run runFunc) (*Local, error) {
	program, ok := findProgram(look, "espeak-ng", "espeak", "say")
	if !ok {
		return nil, ErrNoEngine
	}
	return &Local{program: program, rate: rate, voice: voice, run: run}, nil
}

// Say blocks until the synthesizer exits.
func (l *Local) Say(ctx context.Context, text string) error {
	return l.run(ctx, l.program, l.args(text)...)
}

func (l *Local) args(text string) []string {
	var args []string
	if filepath.Base(l.program) == "say" {
		if l.rate > 0 {
			args = append(args, "-r", strconv.Itoa(l.rate))
		}
		if l.voice != "" {
			args = append(args, "-v", l.voice)
		}
		return append(args, "--", text)
	}

	if l.rate > 0 {
		args = append(args, "-s", strconv.Itoa(l.rate))
	}
	if l.voice != "" {
		args = append(args, "-v", l.voice)
	}
	return append(args, "--", text)
}

// Close does nothing; each utterance is its own process.
func (l *Local) Close() error { return nil }

var _ Engine = (*Local)(nil)

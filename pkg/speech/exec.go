package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var lookPath lookFunc = exec.LookPath

// runFunc executes a command to completion.
type runFunc func(ctx context.Context, name string, args ...string) error

// lookFunc resolves a program on PATH.
type lookFunc func(name string) (string, error)

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// findProgram returns the first candidate present on PATH.
func findProgram(look lookFunc, candidates ...string) (string, bool) {
	for _, name := range candidates {
		if path, err := look(name); err == nil {
			return path, true
		}
	}
	return "", false
}

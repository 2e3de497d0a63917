package inference

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWrapError(t *testing.T) {
	if WrapError("x", nil) != nil {
		t.Error("wrapping nil should return nil")
	}

	inner := errors.New("boom")
	err := WrapError("gemini", inner)
	if !errors.Is(err, inner) {
		t.Error("wrapped error should unwrap to inner")
	}
	if err.Error() != "inference [gemini]: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestDataURL(t *testing.T) {
	if got := DataURL("image/jpeg", []byte("hi")); got != "data:image/jpeg;base64,aGk=" {
		t.Errorf("unexpected data URL %s", got)
	}
}

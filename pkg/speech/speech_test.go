package speech

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/teslashibe/pathsense/pkg/tts"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

// recorder captures commands instead of running them.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
	// onRun sees each invocation before it returns.
	onRun func(name string, args []string)
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()
	if r.onRun != nil {
		r.onRun(name, args)
	}
	return r.err
}

func lookOnly(available ...string) lookFunc {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

type fakeEngine struct {
	said []string
	err  error
}

func (f *fakeEngine) Say(_ context.Context, text string) error {
	f.said = append(f.said, text)
	return f.err
}

func (f *fakeEngine) Close() error { return nil }

func TestConsoleSpeak(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out)
	c.Speak(context.Background(), "Clear path ahead")

	if got := out.String(); got != "AI: Clear path ahead\n" {
		t.Errorf("unexpected output %q", got)
	}
	if c.Mode() != ModeConsole {
		t.Errorf("unexpected mode %s", c.Mode())
	}
}

func TestNewFactoryFailureFallsBackToConsole(t *testing.T) {
	var out bytes.Buffer
	engine := &fakeEngine{}
	factory := func() (Engine, error) {
		return engine, ErrNoEngine
	}

	a := New(&out, factory, discardLogger())
	a.Speak(context.Background(), "Clear path ahead")

	if a.Mode() != ModeConsole {
		t.Fatalf("expected console fallback, got %s", a.Mode())
	}
	if !strings.Contains(out.String(), "AI: Clear path ahead") {
		t.Errorf("expected console echo, got %q", out.String())
	}
	if len(engine.said) != 0 {
		t.Errorf("no playback expected, got %v", engine.said)
	}
}

func TestNewNilFactory(t *testing.T) {
	if a := New(nil, nil, nil); a.Mode() != ModeConsole {
		t.Errorf("expected console, got %s", a.Mode())
	}
}

func TestAudibleSpeaksAndPrints(t *testing.T) {
	var out bytes.Buffer
	engine := &fakeEngine{}
	a := New(&out, func() (Engine, error) { return engine, nil }, discardLogger())

	a.Speak(context.Background(), "Obstacle on right, move left")

	if a.Mode() != ModeAudible {
		t.Fatalf("expected audible, got %s", a.Mode())
	}
	if len(engine.said) != 1 || engine.said[0] != "Obstacle on right, move left" {
		t.Errorf("unexpected engine calls %v", engine.said)
	}
	if out.String() != "AI: Obstacle on right, move left\n" {
		t.Errorf("unexpected console output %q", out.String())
	}
}

func TestAudiblePlaybackErrorIsSwallowed(t *testing.T) {
	var out bytes.Buffer
	engine := &fakeEngine{err: errors.New("device busy")}
	a := New(&out, func() (Engine, error) { return engine, nil }, discardLogger())

	a.Speak(context.Background(), "hello")
	a.Speak(context.Background(), "again")

	if len(engine.said) != 2 {
		t.Errorf("expected both utterances attempted, got %d", len(engine.said))
	}
	if strings.Count(out.String(), "AI: ") != 2 {
		t.Errorf("expected two console lines, got %q", out.String())
	}
}

func TestLocalEngineSelection(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		text      string
		want      []string
	}{
		{
			name:      "espeak-ng preferred",
			available: []string{"espeak-ng", "espeak", "say"},
			text:      "Clear path ahead",
			want:      []string{"/usr/bin/espeak-ng", "-s", "170", "--", "Clear path ahead"},
		},
		{
			name:      "espeak fallback",
			available: []string{"espeak"},
			text:      "-stop",
			want:      []string{"/usr/bin/espeak", "-s", "170", "--", "-stop"},
		},
		{
			name:      "macOS say",
			available: []string{"say"},
			text:      "Person directly ahead, stop",
			want:      []string{"/usr/bin/say", "-r", "170", "--", "Person directly ahead, stop"},
		},
		{
			name:      "say with leading dash",
			available: []string{"say"},
			text:      "-v chair on the left",
			want:      []string{"/usr/bin/say", "-r", "170", "--", "-v chair on the left"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			l, err := newLocal(170, "", lookOnly(tt.available...), rec.run)
			if err != nil {
				t.Fatalf("newLocal: %v", err)
			}
			if err := l.Say(context.Background(), tt.text); err != nil {
				t.Fatalf("Say: %v", err)
			}
			if len(rec.calls) != 1 || strings.Join(rec.calls[0], " ") != strings.Join(tt.want, " ") {
				t.Errorf("got %v, want %v", rec.calls, tt.want)
			}
		})
	}
}

func TestLocalVoice(t *testing.T) {
	rec := &recorder{}
	l, err := newLocal(0, "en-us", lookOnly("espeak-ng"), rec.run)
	if err != nil {
		t.Fatal(err)
	}
	l.Say(context.Background(), "hi")
	want := "/usr/bin/espeak-ng -v en-us -- hi"
	if got := strings.Join(rec.calls[0], " "); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLocalNoEngine(t *testing.T) {
	if _, err := newLocal(170, "", lookOnly(), (&recorder{}).run); !errors.Is(err, ErrNoEngine) {
		t.Errorf("expected ErrNoEngine, got %v", err)
	}
}

func TestCloudPlaysSynthesizedAudio(t *testing.T) {
	provider := tts.NewMock()
	rec := &recorder{}
	rec.onRun = func(name string, args []string) {
		path := args[len(args)-1]
		if !strings.HasSuffix(path, ".mp3") {
			t.Errorf("expected mp3 temp file, got %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("temp file missing during playback: %v", err)
			return
		}
		if !bytes.HasPrefix(data, []byte("ID3")) {
			t.Error("unexpected audio content")
		}
	}

	c, err := newCloud(provider, lookOnly("ffplay", "mpv"), rec.run)
	if err != nil {
		t.Fatalf("newCloud: %v", err)
	}
	if err := c.Say(context.Background(), "Clear path ahead"); err != nil {
		t.Fatalf("Say: %v", err)
	}

	if got := provider.Texts(); len(got) != 1 || got[0] != "Clear path ahead" {
		t.Errorf("expected one synthesis, got %q", got)
	}
	if len(rec.calls) != 1 || rec.calls[0][0] != "/usr/bin/ffplay" {
		t.Fatalf("unexpected player calls %v", rec.calls)
	}
	path := rec.calls[0][len(rec.calls[0])-1]
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file should be removed after playback")
	}
}

func TestCloudMPVFallback(t *testing.T) {
	rec := &recorder{}
	c, err := newCloud(tts.NewMock(), lookOnly("mpv"), rec.run)
	if err != nil {
		t.Fatal(err)
	}
	c.Say(context.Background(), "hi")
	if rec.calls[0][0] != "/usr/bin/mpv" || rec.calls[0][1] != "--no-video" {
		t.Errorf("unexpected mpv invocation %v", rec.calls[0])
	}
}

func TestCloudSynthesisFailureSkipsPlayback(t *testing.T) {
	rec := &recorder{}
	c, err := newCloud(tts.WithError(errors.New("quota")), lookOnly("ffplay"), rec.run)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Say(context.Background(), "hi"); err == nil {
		t.Error("expected synthesis error")
	}
	if len(rec.calls) != 0 {
		t.Errorf("player must not run, got %v", rec.calls)
	}
}

func TestCloudNoPlayer(t *testing.T) {
	if _, err := newCloud(tts.NewMock(), lookOnly(), (&recorder{}).run); !errors.Is(err, ErrNoPlayer) {
		t.Errorf("expected ErrNoPlayer, got %v", err)
	}
}

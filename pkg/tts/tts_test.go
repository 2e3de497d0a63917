package tts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teslashibe/pathsense/pkg/tts"
)

func TestMockProvider(t *testing.T) {
	mock := tts.NewMock()
	ctx := context.Background()

	result, err := mock.Synthesize(ctx, "Clear path ahead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Audio) == 0 || result.CharCount != 16 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Format.Encoding != tts.EncodingMP3 {
		t.Errorf("expected mp3, got %s", result.Format.Encoding)
	}
	if err := mock.Health(ctx); err != nil {
		t.Errorf("unexpected health error: %v", err)
	}

	mock.Synthesize(ctx, "Chair on the left")
	if got := mock.Texts(); len(got) != 2 || got[1] != "Chair on the left" {
		t.Errorf("unexpected texts %q", got)
	}

	mock.Close()
	if !mock.Closed() {
		t.Error("expected mock to be closed")
	}
}

func TestMockWithError(t *testing.T) {
	testErr := errors.New("test error")
	mock := tts.WithError(testErr)
	ctx := context.Background()

	if _, err := mock.Synthesize(ctx, "Hello"); !errors.Is(err, testErr) {
		t.Errorf("expected test error, got %v", err)
	}
	if err := mock.Health(ctx); err == nil {
		t.Error("expected health error")
	}
}

func TestFunctionalOptions(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.Apply(
		tts.WithVoice("nova"),
		tts.WithModel(tts.ModelTTS1HD),
		tts.WithTimeout(5*time.Second),
		tts.WithOutputFormat(tts.EncodingWAV),
		tts.WithRate(340),
	)

	if cfg.VoiceID != "nova" {
		t.Errorf("expected voice nova, got %s", cfg.VoiceID)
	}
	if cfg.ModelID != tts.ModelTTS1HD {
		t.Errorf("expected model tts-1-hd, got %s", cfg.ModelID)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Timeout)
	}
	if cfg.OutputFormat != tts.EncodingWAV {
		t.Errorf("expected wav format, got %s", cfg.OutputFormat)
	}
	if cfg.Speed != 2.0 {
		t.Errorf("expected speed 2.0, got %v", cfg.Speed)
	}

	cfg.Apply(tts.WithVoice(""))
	if cfg.VoiceID != "nova" {
		t.Errorf("empty voice should keep current, got %q", cfg.VoiceID)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := tts.DefaultConfig()
	if err := cfg.Validate(); err != tts.ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}

	cfg.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Speed = 9
	if err := cfg.Validate(); err == nil {
		t.Error("expected out-of-range speed to be rejected")
	}

	cfg.VoiceID = ""
	if err := cfg.Validate(); err != tts.ErrNoVoiceID {
		t.Errorf("expected ErrNoVoiceID, got %v", err)
	}
}

func TestSpeedForRate(t *testing.T) {
	tests := []struct {
		wpm  int
		want float64
	}{
		{0, 1.0},
		{170, 1.0},
		{85, 0.5},
		{10, 0.25},
		{2000, 4.0},
	}
	for _, tt := range tests {
		if got := tts.SpeedForRate(tt.wpm); got != tt.want {
			t.Errorf("SpeedForRate(%d) = %v, want %v", tt.wpm, got, tt.want)
		}
	}
}

func TestEncodingExtension(t *testing.T) {
	if tts.EncodingWAV.Extension() != ".wav" {
		t.Errorf("unexpected wav extension %s", tts.EncodingWAV.Extension())
	}
	if tts.Encoding("").Extension() != ".mp3" {
		t.Error("unknown encodings should default to .mp3")
	}
}

func TestWrapError(t *testing.T) {
	err := tts.WrapError("openai", tts.ErrEmptyAudio)
	if !errors.Is(err, tts.ErrEmptyAudio) {
		t.Error("wrapped error should unwrap to the sentinel")
	}
	if got := err.Error(); got != "tts [openai]: tts: empty audio response" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestOpenAISynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body["input"] != "Person directly ahead, stop" {
			t.Errorf("unexpected input %v", body["input"])
		}
		if body["voice"] != tts.VoiceNova || body["response_format"] != "mp3" {
			t.Errorf("unexpected voice/format: %v", body)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fakeaudio"))
	}))
	defer server.Close()

	provider, err := tts.NewOpenAI(
		tts.WithAPIKey("sk-test"),
		tts.WithBaseURL(server.URL+"/v1/"),
		tts.WithVoice(tts.VoiceNova),
	)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	defer provider.Close()

	result, err := provider.Synthesize(context.Background(), "Person directly ahead, stop")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(result.Audio) != "ID3fakeaudio" {
		t.Errorf("unexpected audio %q", result.Audio)
	}
	if result.Format.SampleRate != 44100 {
		t.Errorf("expected 44100 Hz for mp3, got %d", result.Format.SampleRate)
	}
}

func TestOpenAIErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","code":"server_busy"}}`))
	}))
	defer server.Close()

	provider, err := tts.NewOpenAI(tts.WithAPIKey("sk-test"), tts.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	_, err = provider.Synthesize(context.Background(), "hello")
	var apiErr *tts.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "server_busy" || apiErr.Message != "overloaded" {
		t.Errorf("unexpected parsed error: %+v", apiErr)
	}
	if calls != 1 {
		t.Errorf("expected a single request, got %d", calls)
	}
}

func TestOpenAIRejectsEmptyText(t *testing.T) {
	provider, err := tts.NewOpenAI(tts.WithAPIKey("sk-test"), tts.WithBaseURL("http://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if _, err := provider.Synthesize(context.Background(), "  "); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := tts.NewOpenAI(); !errors.Is(err, tts.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

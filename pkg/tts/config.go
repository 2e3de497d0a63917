package tts

import (
	"fmt"
	"log/slog"
	"time"
)

// Config describes how a cloud voice is synthesized. Build it with
// DefaultConfig and the With* options.
type Config struct {
	APIKey  string
	BaseURL string

	VoiceID string
	ModelID string

	// Speed is the provider playback multiplier, 1.0 being normal speech.
	Speed float64

	OutputFormat Encoding
	Timeout      time.Duration
	Logger       *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

func WithAPIKey(key string) Option { return func(c *Config) { c.APIKey = key } }
func WithBaseURL(url string) Option { return func(c *Config) { c.BaseURL = url } }
func WithModel(modelID string) Option { return func(c *Config) { c.ModelID = modelID } }
func WithOutputFormat(e Encoding) Option { return func(c *Config) { c.OutputFormat = e } }
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }
func WithLogger(l *slog.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithVoice selects a voice. An empty name keeps the current one so an unset
// --voice flag falls through to the provider default.
func WithVoice(voiceID string) Option {
	return func(c *Config) {
		if voiceID != "" {
			c.VoiceID = voiceID
		}
	}
}

// WithRate converts a words-per-minute rate, as used by local engines, into
// the provider speed multiplier.
func WithRate(wpm int) Option {
	return func(c *Config) { c.Speed = SpeedForRate(wpm) }
}

// DefaultConfig is tts-1 with the shimmer voice at normal speed, as MP3.
func DefaultConfig() *Config {
	return &Config{
		ModelID:      ModelTTS1,
		VoiceID:      VoiceShimmer,
		Speed:        1.0,
		OutputFormat: EncodingMP3,
		Timeout:      30 * time.Second,
		Logger:       slog.Default(),
	}
}

// Apply runs opts in order.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate reports the first missing or out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.APIKey == "":
		return ErrNoAPIKey
	case c.VoiceID == "":
		return ErrNoVoiceID
	case c.Speed < minSpeed || c.Speed > maxSpeed:
		return fmt.Errorf("tts: speed %.2f outside %.2f-%.2f", c.Speed, minSpeed, maxSpeed)
	}
	return nil
}

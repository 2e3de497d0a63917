// Package tts synthesizes narration audio through a cloud speech API.
//
// Example usage:
//
//	provider, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithVoice(tts.VoiceNova),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Clear path ahead")
//	// result.Audio holds an encoded file ready for a player
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the encoded audio data.
	Audio []byte

	// Format describes the audio encoding and sample rate.
	Format AudioFormat

	// Duration is the estimated audio playback duration, when known.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the request round trip in milliseconds.
	LatencyMs int64
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
}

// Encoding is the container/codec of synthesized audio.
// Values match the OpenAI response_format parameter.
type Encoding string

const (
	EncodingMP3  Encoding = "mp3"
	EncodingWAV  Encoding = "wav"
	EncodingOpus Encoding = "opus"
	EncodingAAC  Encoding = "aac"
	EncodingFLAC Encoding = "flac"
)

// Extension returns the file extension players expect for enc.
func (enc Encoding) Extension() string {
	switch enc {
	case EncodingWAV, EncodingOpus, EncodingAAC, EncodingFLAC:
		return "." + string(enc)
	default:
		return ".mp3"
	}
}

// WordsPerMinute is the nominal speaking rate at speed 1.0.
const WordsPerMinute = 170

// SpeedForRate converts a words-per-minute rate into the API's speed
// multiplier, clamped to the accepted 0.25..4.0 range.
func SpeedForRate(wpm int) float64 {
	if wpm <= 0 {
		return 1.0
	}
	speed := float64(wpm) / WordsPerMinute
	switch {
	case speed < minSpeed:
		return minSpeed
	case speed > maxSpeed:
		return maxSpeed
	}
	return speed
}

const (
	minSpeed = 0.25
	maxSpeed = 4.0
)

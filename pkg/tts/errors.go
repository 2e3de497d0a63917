package tts

import (
	"errors"

	"github.com/teslashibe/pathsense/internal/apierr"
)

const serviceName = "tts"

var (
	ErrNoAPIKey   = errors.New("tts: API key required")
	ErrNoVoiceID  = errors.New("tts: voice ID required")
	ErrEmptyText  = errors.New("tts: text required")
	ErrEmptyAudio = errors.New("tts: empty audio response")
)

// APIError is an error response from a speech synthesis API.
type APIError = apierr.Error

// ProviderError wraps an error with provider context.
type ProviderError = apierr.ProviderError

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	return apierr.Wrap(serviceName, provider, err)
}

package inference

import (
	"errors"

	"github.com/teslashibe/pathsense/internal/apierr"
)

const serviceName = "inference"

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when API key is required but missing.
	ErrNoAPIKey = errors.New("inference: API key required")

	// ErrNoModel is returned when model is required but missing.
	ErrNoModel = errors.New("inference: model required")

	// ErrNoImage is returned when a vision request carries no image.
	ErrNoImage = errors.New("inference: image required")
)

// APIError is an error response from an inference API.
type APIError = apierr.Error

// ProviderError wraps an error with provider context.
type ProviderError = apierr.ProviderError

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	return apierr.Wrap(serviceName, provider, err)
}

// Package apierr holds the error types shared by the remote API clients.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx answer from a remote API.
type Error struct {
	// Service is the calling package, e.g. "inference" or "tts".
	Service string

	// Provider identifies which backend answered.
	Provider string

	StatusCode int
	Message    string

	// Code is the machine-readable reason, when the API sends one.
	Code string
}

func (e *Error) Error() string {
	service := e.Service
	if service == "" {
		service = "api"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: API error %d (%s): %s", service, e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s [%s]: API error %d: %s", service, e.Provider, e.StatusCode, e.Message)
}

// IsRateLimited reports HTTP 429.
func (e *Error) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized reports a rejected credential. Google APIs answer a bad key
// with 400 and reason API_KEY_INVALID.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "API_KEY_INVALID"
}

// IsServerError reports HTTP 5xx.
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Kind names the failure class of err for log lines: "rate_limited",
// "unauthorized", "server_error" or "client_error" for API errors, and ""
// for anything else.
func Kind(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	switch {
	case e.IsRateLimited():
		return "rate_limited"
	case e.IsUnauthorized():
		return "unauthorized"
	case e.IsServerError():
		return "server_error"
	}
	return "client_error"
}

// FromResponse drains resp.Body and builds an Error from it. Both the
// OpenAI shape {"error":{"message","code"}} and the Google shape
// {"error":{"code":400,"message","status"}} are understood; anything else
// is kept verbatim as the message.
func FromResponse(service, provider string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	e := &Error{
		Service:    service,
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}

	var payload struct {
		Error struct {
			Message string          `json:"message"`
			Code    json.RawMessage `json:"code"`
			Status  string          `json:"status"`
			Type    string          `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil || payload.Error.Message == "" {
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return e
	}

	e.Message = payload.Error.Message
	var code string
	if json.Unmarshal(payload.Error.Code, &code) == nil && code != "" {
		e.Code = code
	} else if payload.Error.Status != "" {
		e.Code = payload.Error.Status
	} else if payload.Error.Type != "" {
		e.Code = payload.Error.Type
	}
	return e
}

// ProviderError adds provider context to a transport or local failure.
type ProviderError struct {
	Service  string
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Service, e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err.
func Wrap(service, provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Service: service, Provider: provider, Err: err}
}


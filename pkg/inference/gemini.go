package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/pathsense/internal/httpc"
	"google.golang.org/api/googleapi"
)

const (
	providerGemini     = "gemini"
	defaultGeminiModel = "gemini-2.5-flash"
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
)

// Gemini implements the Provider interface for the Generative Language REST
// API. Generation settings are left at the model defaults.
type Gemini struct {
	config  *Config
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewGemini creates a Gemini provider.
// WithBaseURL replaces the API root, including the version path.
func NewGemini(opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = geminiBaseURL
	cfg.Model = defaultGeminiModel
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, WrapError(providerGemini, err)
	}

	return &Gemini{
		config:  cfg,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "inference.gemini"),
	}, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *geminiInline `json:"inline_data,omitempty"`
}

type geminiInline struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Vision analyzes an image using Gemini.
func (g *Gemini) Vision(ctx context.Context, req *VisionRequest) (*VisionResponse, error) {
	if len(req.Image) == 0 {
		return nil, WrapError(providerGemini, ErrNoImage)
	}

	start := time.Now()

	model := req.Model
	if model == "" {
		model = g.config.Model
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: req.Prompt},
				{InlineData: &geminiInline{MimeType: req.mimeType(), Data: EncodeBase64(req.Image)}},
			},
		}},
	})
	if err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("marshal payload: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.do(ctx, http.MethodPost, "/"+modelName(model)+":generateContent", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("decode response: %w", err))
	}

	out := &VisionResponse{
		Model:     model,
		LatencyMs: time.Since(start).Milliseconds(),
		Usage: Usage{
			PromptTokens:     result.UsageMetadata.PromptTokenCount,
			CompletionTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      result.UsageMetadata.TotalTokenCount,
		},
	}

	if len(result.Candidates) == 0 {
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			g.logger.Warn("prompt blocked", "reason", result.PromptFeedback.BlockReason)
		}
		return out, nil
	}

	candidate := result.Candidates[0]
	out.FinishReason = candidate.FinishReason
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	out.Content = text.String()

	g.logger.Debug("vision complete",
		"model", model,
		"finish_reason", out.FinishReason,
		"image_bytes", len(req.Image),
		"latency_ms", out.LatencyMs,
	)

	return out, nil
}

// Health checks that the configured model is reachable with this key.
func (g *Gemini) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.do(ctx, http.MethodGet, "/"+modelName(g.config.Model), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Close releases resources.
func (g *Gemini) Close() error {
	return nil
}

// do sends one request and returns the response only for 2xx status codes.
func (g *Gemini) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("x-goog-api-key", g.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}
	if err := googleapi.CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, convertError(err)
	}
	return resp, nil
}

// convertError maps a googleapi.Error onto APIError. The machine-readable
// reason comes from the legacy errors list or from a google.rpc.ErrorInfo
// detail, which is where API_KEY_INVALID is reported.
func convertError(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return WrapError(providerGemini, err)
	}

	code := ""
	for _, item := range gErr.Errors {
		if item.Reason != "" {
			code = item.Reason
			break
		}
	}
	if code == "" {
		for _, d := range gErr.Details {
			if m, ok := d.(map[string]interface{}); ok {
				if reason, ok := m["reason"].(string); ok && reason != "" {
					code = reason
					break
				}
			}
		}
	}

	message := gErr.Message
	if message == "" {
		message = strings.TrimSpace(gErr.Body)
	}
	if message == "" {
		message = http.StatusText(gErr.Code)
	}

	return &APIError{
		Service:    serviceName,
		Provider:   providerGemini,
		StatusCode: gErr.Code,
		Message:    message,
		Code:       code,
	}
}

// modelName returns the resource name expected by the API.
func modelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// Verify Gemini implements Provider at compile time.
var _ Provider = (*Gemini)(nil)

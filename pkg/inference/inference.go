// Package inference provides a unified interface for remote vision inference.
//
// A Provider turns one encoded image plus a text prompt into a natural
// language answer. Two implementations exist: Gemini, which talks to the
// Generative Language API, and Client, which works with any OpenAI-compatible
// chat completions endpoint.
//
// Example usage:
//
//	provider, _ := inference.NewGemini(
//	    inference.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    inference.WithModel("gemini-2.5-flash"),
//	)
//	defer provider.Close()
//
//	resp, _ := provider.Vision(ctx, &inference.VisionRequest{
//	    Image:    jpegBytes,
//	    MIMEType: inference.MIMETypeJPEG,
//	    Prompt:   "What do you see?",
//	})
package inference

import (
	"context"
)

// MIMETypeJPEG is the declared type of JPEG payloads.
const MIMETypeJPEG = "image/jpeg"

// Provider is the inference interface used by the obstacle detector.
type Provider interface {
	// Vision analyzes an encoded image with a text prompt.
	Vision(ctx context.Context, req *VisionRequest) (*VisionResponse, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// VisionRequest for image analysis.
type VisionRequest struct {
	// Image holds the encoded image bytes.
	Image []byte

	// MIMEType declares the encoding of Image. Defaults to image/jpeg.
	MIMEType string

	// Prompt describing what to analyze or ask about the image.
	Prompt string

	// Model overrides the default model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}

// VisionResponse from image analysis.
type VisionResponse struct {
	// Content is the natural language response. It may be empty when the
	// model produced no text.
	Content string

	// FinishReason reports why generation stopped, when the API says.
	FinishReason string

	// Usage tracks token consumption.
	Usage Usage

	// Model used for analysis.
	Model string

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// Usage tracks token consumption for billing and limits.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func (r *VisionRequest) mimeType() string {
	if r.MIMEType == "" {
		return MIMETypeJPEG
	}
	return r.MIMEType
}

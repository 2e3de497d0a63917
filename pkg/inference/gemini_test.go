package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type geminiTestRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MimeType string `json:"mime_type"`
				Data     string `json:"data"`
			} `json:"inline_data"`
		} `json:"parts"`
	} `json:"contents"`
}

func newGeminiTestServer(t *testing.T, handler http.HandlerFunc) (*Gemini, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	g, err := NewGemini(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL+"/v1beta/"),
		WithLogger(discardLogger()),
	)
	if err != nil {
		server.Close()
		t.Fatalf("NewGemini: %v", err)
	}
	return g, server.Close
}

func TestGeminiVision(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0}

	g, done := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("expected API key header, got %q", got)
		}
		if r.URL.Query().Get("key") != "" {
			t.Error("API key must not be sent in the query string")
		}

		var req geminiTestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("expected one content with two parts, got %+v", req)
			return
		}
		parts := req.Contents[0].Parts
		if parts[0].Text != "Find obstacles" {
			t.Errorf("expected prompt text first, got %q", parts[0].Text)
		}
		if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/jpeg" {
			t.Errorf("expected inline JPEG, got %+v", parts[1].InlineData)
			return
		}
		if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString(image) {
			t.Errorf("image payload mismatch")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Person directly ahead, "}, {"text": "stop"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 260, "candidatesTokenCount": 6, "totalTokenCount": 266}
		}`))
	})
	defer done()

	resp, err := g.Vision(context.Background(), &VisionRequest{Image: image, Prompt: "Find obstacles"})
	if err != nil {
		t.Fatalf("Vision failed: %v", err)
	}
	if resp.Content != "Person directly ahead, stop" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.FinishReason != "STOP" {
		t.Errorf("expected STOP, got %s", resp.FinishReason)
	}
	if resp.Model != "gemini-2.5-flash" {
		t.Errorf("expected model gemini-2.5-flash, got %s", resp.Model)
	}
	if resp.Usage.TotalTokens != 266 {
		t.Errorf("expected 266 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestGeminiVisionNoCandidates(t *testing.T) {
	g, done := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"promptFeedback": {"blockReason": "SAFETY"}}`))
	})
	defer done()

	resp, err := g.Vision(context.Background(), &VisionRequest{Image: []byte{1}, Prompt: "p"})
	if err != nil {
		t.Fatalf("blocked prompt should not fail: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("expected empty content, got %q", resp.Content)
	}
}

func TestGeminiVisionAPIError(t *testing.T) {
	g, done := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	})
	defer done()

	_, err := g.Vision(context.Background(), &VisionRequest{Image: []byte{1}, Prompt: "p"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || !apiErr.IsRateLimited() {
		t.Errorf("expected 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Service != "inference" || apiErr.Provider != "gemini" {
		t.Errorf("unexpected error context %s/%s", apiErr.Service, apiErr.Provider)
	}
}

func TestGeminiInvalidKeyIsUnauthorized(t *testing.T) {
	g, done := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {
			"code": 400,
			"message": "API key not valid. Please pass a valid API key.",
			"status": "INVALID_ARGUMENT",
			"details": [{"@type": "type.googleapis.com/google.rpc.ErrorInfo", "reason": "API_KEY_INVALID", "domain": "googleapis.com"}]
		}}`))
	})
	defer done()

	_, err := g.Vision(context.Background(), &VisionRequest{Image: []byte{1}, Prompt: "p"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Code != "API_KEY_INVALID" || !apiErr.IsUnauthorized() {
		t.Errorf("expected API_KEY_INVALID, got %+v", apiErr)
	}
	if apiErr.Message != "API key not valid. Please pass a valid API key." {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestGeminiHealth(t *testing.T) {
	g, done := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1beta/models/gemini-2.5-flash" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "models/gemini-2.5-flash"}`))
	})
	defer done()

	if err := g.Health(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini()
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestModelName(t *testing.T) {
	if got := modelName("gemini-2.5-flash"); got != "models/gemini-2.5-flash" {
		t.Errorf("unexpected %s", got)
	}
	if got := modelName("models/custom"); got != "models/custom" {
		t.Errorf("unexpected %s", got)
	}
}

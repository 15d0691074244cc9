package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-review-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		apiKey:     "test-key",
		model:      "gpt-4o-mini",
		baseURL:    srv.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}, srv
}

func TestCompleteParsesResponse(t *testing.T) {
	var captured chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"score": 80}`}},
			},
			"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
		})
	})

	out, err := client.Complete(context.Background(), llm.CompletionRequest{
		System:    "You review resumes.",
		User:      "Score this resume.",
		ForceJSON: true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Text != `{"score": 80}` {
		t.Errorf("text = %q", out.Text)
	}
	if out.TotalTokens != 150 || out.PromptTokens != 120 {
		t.Errorf("usage = %+v", out)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", captured.Messages)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v", captured.ResponseFormat)
	}
	if captured.Temperature == nil || *captured.Temperature != 0 {
		t.Errorf("temperature = %v", captured.Temperature)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit_error"},
		})
	})

	_, err := client.Complete(context.Background(), llm.CompletionRequest{User: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	if _, err := client.Complete(context.Background(), llm.CompletionRequest{User: "hi"}); err == nil {
		t.Fatal("expected error for missing choices")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := NewClient("key", ""); err == nil {
		t.Error("expected error for missing model")
	}
}

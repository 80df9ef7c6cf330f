package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Temperature: 0.7}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestCompleteSendsPersonaAndPrompt(t *testing.T) {
	var got chatRequest
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-3.5-turbo",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Title: A Sunny Day\nA dog ran..."}}],
			"usage":{"prompt_tokens":10,"completion_tokens":8,"total_tokens":18}}`))
	}, nil)

	out, err := c.Complete(context.Background(), "You are a children's author", "Write a short story")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Title: A Sunny Day\nA dog ran..." {
		t.Fatalf("content: %q", out)
	}
	if calls != 1 {
		t.Fatalf("want exactly one request, got %d", calls)
	}
	if got.Model != DefaultModel || len(got.Messages) != 2 ||
		got.Messages[0].Role != "system" || got.Messages[0].Content != "You are a children's author" ||
		got.Messages[1].Role != "user" || got.Messages[1].Content != "Write a short story" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Temperature != 0.7 {
		t.Fatalf("temperature: %v", got.Temperature)
	}
}

func TestCompleteErrorsAreSingleShot(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}, func(cfg *Config) { cfg.Model = "nope" })

	_, err := c.Complete(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("want status in error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("client must not retry: %d calls", calls)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}, nil)
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatalf("empty choices should fail")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err == nil {
		t.Fatalf("missing key should fail")
	}
}

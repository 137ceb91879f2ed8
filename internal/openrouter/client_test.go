package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func noDelay(attempt int) time.Duration { return 0 }

func successResponse() ChatResponse {
	return ChatResponse{
		Choices: []Choice{
			{Message: Message{Role: "assistant", Content: "ok"}},
		},
	}
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected Authorization header 'Bearer test-key', got %q", r.Header.Get("Authorization"))
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		var req ChatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("failed to unmarshal request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model 'test-model', got %q", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected system+user messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[0].Content != "be brief" {
			t.Errorf("unexpected system message: %+v", req.Messages[0])
		}
		if req.Messages[1].Role != "user" || req.Messages[1].Content != "hello" {
			t.Errorf("unexpected user message: %+v", req.Messages[1])
		}
		if req.Temperature == nil || *req.Temperature != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", req.Temperature)
		}

		resp := ChatResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "hi there"}}},
			Usage:   &Usage{TotalTokens: 42, Cost: 0.0017},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	completion, err := client.Complete(context.Background(), "test-model", "be brief", "hello", 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.Content != "hi there" {
		t.Errorf("expected 'hi there', got %q", completion.Content)
	}
	if completion.Tokens != 42 {
		t.Errorf("expected 42 tokens, got %d", completion.Tokens)
	}
	if completion.CostUSD != 0.0017 {
		t.Errorf("expected cost 0.0017, got %f", completion.CostUSD)
	}
}

func TestCompleteOmitsTemperatureForReasoningModels(t *testing.T) {
	for _, model := range []string{"o1-preview", "O3-mini", "gpt-5", "openai/gpt-5-turbo", "openai/o1"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var req ChatRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Fatalf("failed to unmarshal request: %v", err)
			}
			if req.Temperature != nil {
				t.Errorf("model %s: expected temperature omitted, got %v", model, *req.Temperature)
			}
			json.NewEncoder(w).Encode(successResponse())
		}))

		client := NewClientWithBaseURL("test-key", server.URL)
		if _, err := client.Complete(context.Background(), model, "sys", "user", 0.7); err != nil {
			t.Fatalf("model %s: unexpected error: %v", model, err)
		}
		server.Close()
	}
}

func TestCompleteKeepsTemperatureForNonReasoningModels(t *testing.T) {
	// "o" prefixes must not over-match models like openchat.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req ChatRequest
		json.Unmarshal(body, &req)
		if req.Temperature == nil {
			t.Error("expected temperature to be sent")
		}
		json.NewEncoder(w).Encode(successResponse())
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	if _, err := client.Complete(context.Background(), "openchat/openchat-7b", "sys", "user", 0.7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompleteWithoutUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(successResponse())
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	completion, err := client.Complete(context.Background(), "test-model", "sys", "user", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.Tokens != 0 || completion.CostUSD != 0 {
		t.Errorf("expected zero accounting without usage, got %d tokens, %f cost", completion.Tokens, completion.CostUSD)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/models" {
			t.Errorf("expected /models, got %s", r.URL.Path)
		}

		resp := ModelsResponse{
			Data: []Model{
				{ID: "model-1", Name: "Model One", Pricing: &Pricing{Prompt: "0", Completion: "0"}},
				{ID: "model-2", Name: "Model Two", Pricing: nil},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].ID != "model-1" {
		t.Errorf("expected 'model-1', got %q", models[0].ID)
	}
}

func TestCompleteRetries429(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := count.Add(1)
		if n <= 2 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "rate limited")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(successResponse())
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	client.backoffFunc = noDelay

	completion, err := client.Complete(context.Background(), "test-model", "sys", "user", 0)
	if err != nil {
		t.Fatalf("expected success after retries, got error: %v", err)
	}
	if completion.Content != "ok" {
		t.Errorf("expected 'ok', got %q", completion.Content)
	}
	if got := count.Load(); got != 3 {
		t.Errorf("expected 3 total requests, got %d", got)
	}
}

func TestCompleteRetries500(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := count.Add(1)
		if n <= 1 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "server error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(successResponse())
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	client.backoffFunc = noDelay

	if _, err := client.Complete(context.Background(), "test-model", "sys", "user", 0); err != nil {
		t.Fatalf("expected success after retry, got error: %v", err)
	}
	if got := count.Load(); got != 2 {
		t.Errorf("expected 2 total requests, got %d", got)
	}
}

func TestCompleteMaxRetries(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "rate limited")
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	client.backoffFunc = noDelay

	_, err := client.Complete(context.Background(), "test-model", "sys", "user", 0)
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	if got := count.Load(); got != 4 {
		t.Errorf("expected 4 total attempts (1 + 3 retries), got %d", got)
	}
}

func TestCompleteNoRetryOn400(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad request")
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	client.backoffFunc = noDelay

	_, err := client.Complete(context.Background(), "test-model", "sys", "user", 0)
	if err == nil {
		t.Fatal("expected error for 400, got nil")
	}
	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 request (no retry), got %d", got)
	}
}

func TestNewClientSetsDefaultBaseURL(t *testing.T) {
	client := NewClient("my-key")
	if client.baseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("expected default base URL, got %q", client.baseURL)
	}
	if client.apiKey != "my-key" {
		t.Errorf("expected apiKey 'my-key', got %q", client.apiKey)
	}
}

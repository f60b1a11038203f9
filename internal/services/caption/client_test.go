package caption

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func captionResponse(text string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": text},
			},
		},
	}
}

func TestCaptionImageSendsDataURI(t *testing.T) {
	var gotRequest chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(captionResponse(" A man walks through rain. "))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "vision-model"})
	caption, err := client.CaptionImage(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("CaptionImage: %v", err)
	}
	if caption != "A man walks through rain." {
		t.Fatalf("unexpected caption: %q", caption)
	}
	if gotRequest.Model != "vision-model" {
		t.Fatalf("unexpected model: %q", gotRequest.Model)
	}
	if len(gotRequest.Messages) != 1 || len(gotRequest.Messages[0].Content) != 2 {
		t.Fatalf("unexpected message shape: %+v", gotRequest.Messages)
	}
	image := gotRequest.Messages[0].Content[1]
	if image.Type != "image_url" || image.ImageURL == nil || !strings.HasPrefix(image.ImageURL.URL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected image part: %+v", image)
	}
}

func TestCaptionImageRequiresKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.CaptionImage(context.Background(), []byte{1}, ""); err == nil {
		t.Fatal("expected api key error")
	}
}

func TestCaptionImageRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(captionResponse("A door opens."))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithRetryBackoff(time.Millisecond, 10*time.Millisecond),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	caption, err := client.CaptionImage(context.Background(), []byte{1}, "")
	if err != nil {
		t.Fatalf("CaptionImage: %v", err)
	}
	if caption != "A door opens." {
		t.Fatalf("unexpected caption: %q", caption)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(slept))
	}
}

func TestCaptionImageDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithSleeper(func(time.Duration) {}))
	if _, err := client.CaptionImage(context.Background(), []byte{1}, ""); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt, got %d", calls.Load())
	}
}

func TestCaptionImageHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(captionResponse("Rain falls."))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	if _, err := client.CaptionImage(context.Background(), []byte{1}, ""); err != nil {
		t.Fatalf("CaptionImage: %v", err)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected Retry-After sleep of 2s, got %v", slept)
	}
}

func TestCaptionImageSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "model not found"}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithRetryMaxAttempts(1))
	if _, err := client.CaptionImage(context.Background(), []byte{1}, ""); err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	if d, ok := parseRetryAfter("5"); !ok || d != 5*time.Second {
		t.Fatalf("unexpected parse: %v %v", d, ok)
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("expected no value for empty header")
	}
	if _, ok := parseRetryAfter("-3"); ok {
		t.Fatal("expected no value for negative seconds")
	}
}

func TestMimeTypeFor(t *testing.T) {
	if mimeTypeFor("a.png") != "image/png" {
		t.Fatal("png mime")
	}
	if mimeTypeFor("a.jpg") != "image/jpeg" {
		t.Fatal("jpg mime")
	}
}

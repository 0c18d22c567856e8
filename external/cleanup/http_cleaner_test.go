package cleanup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClean_EmptyURLPassesThrough(t *testing.T) {
	c := NewHTTPCleaner("")
	got, err := c.Clean(context.Background(), "unchanged text", "en-US")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "unchanged text" {
		t.Fatalf("got %q, want passthrough", got)
	}
}

func TestClean_Success(t *testing.T) {
	var gotText, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var body struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotText = body.Text
		gotLanguage = body.Language
		_ = json.NewEncoder(w).Encode(map[string]string{"cleaned": "It hurts when I breathe."})
	}))
	defer server.Close()

	c := NewHTTPCleaner(server.URL)
	got, err := c.Clean(context.Background(), "it hurts when i breathe", "en-US")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "It hurts when I breathe." {
		t.Fatalf("got %q", got)
	}
	if gotText != "it hurts when i breathe" || gotLanguage != "en-US" {
		t.Fatalf("request carried %q/%q", gotText, gotLanguage)
	}
}

func TestClean_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewHTTPCleaner(server.URL)
	if _, err := c.Clean(context.Background(), "text", "en-US"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestClean_EmptyCleanedIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"cleaned": ""})
	}))
	defer server.Close()

	c := NewHTTPCleaner(server.URL)
	if _, err := c.Clean(context.Background(), "text", "en-US"); err == nil {
		t.Fatal("expected error for empty cleaned text")
	}
}

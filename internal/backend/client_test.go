package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteSuccess(t *testing.T) {
	var gotBody completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"data": "Hi there"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Complete(context.Background(), "user: Hello\nuser: Hello", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "Hi there" {
		t.Errorf("Complete() = %q, want %q", got, "Hi there")
	}
	if gotBody.Query != "user: Hello\nuser: Hello" {
		t.Errorf("request query = %q", gotBody.Query)
	}
	if gotBody.Model != "gpt-4o-mini" {
		t.Errorf("request model = %q, want %q", gotBody.Model, "gpt-4o-mini")
	}
}

func TestCompleteEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"data": ""})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Complete(context.Background(), "user: Hello", "m")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "No response from AI." {
		t.Errorf("Complete() = %q, want fallback text", got)
	}
}

func TestCompleteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]int{"remainingTime": 42})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Complete(context.Background(), "user: Hello", "m")

	var limited *RateLimitError
	if !errors.As(err, &limited) {
		t.Fatalf("Complete() error = %v, want *RateLimitError", err)
	}
	if limited.RemainingTime != 42 {
		t.Errorf("RemainingTime = %d, want 42", limited.RemainingTime)
	}
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Complete(context.Background(), "user: Hello", "m")
	if err == nil {
		t.Fatal("Complete() should fail on 500")
	}
	if err.Error() != "Internal Server Error" {
		t.Errorf("error = %q, want status text", err.Error())
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL)
	_, err := c.Complete(context.Background(), "user: Hello", "m")
	if err == nil {
		t.Fatal("Complete() should fail when the server is unreachable")
	}
}

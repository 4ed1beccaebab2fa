package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestPublisher(endpoint string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		endpoint:   endpoint,
		authHeader: "Bearer test-token",
	}
}

func TestPublishSuccess(t *testing.T) {
	var gotBody map[string]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1","text":"hello"}}`))
	}))
	defer srv.Close()

	client := newTestPublisher(srv.URL)
	if err := client.Publish(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody["text"] != "hello" {
		t.Errorf("payload text = %q, want %q", gotBody["text"], "hello")
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestPublishRejectionCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"duplicate content"}`))
	}))
	defer srv.Close()

	client := newTestPublisher(srv.URL)
	err := client.Publish(context.Background(), "hello again")
	if err == nil {
		t.Fatalf("expected an error")
	}

	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("got %T, want *PublishError", err)
	}
	if pubErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", pubErr.StatusCode)
	}
	if pubErr.Body != `{"detail":"duplicate content"}` {
		t.Errorf("body = %q", pubErr.Body)
	}
}

func TestPublishRefusesEmptyText(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := newTestPublisher(srv.URL)
	if err := client.Publish(context.Background(), ""); err == nil {
		t.Fatalf("expected an error for empty text")
	}
	if called {
		t.Errorf("platform was called with empty text")
	}
}

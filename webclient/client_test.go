package webclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetSendsHeadersAndCapsBody(t *testing.T) {
	var gotUA, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Extra")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer srv.Close()

	c := New(Options{
		Headers:      map[string]string{"User-Agent": "newsdesk-test"},
		MaxBodyBytes: 10,
	})
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"X-Extra": "1"})
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if gotUA != "newsdesk-test" || gotExtra != "1" {
		t.Fatalf("headers not sent: ua=%q extra=%q", gotUA, gotExtra)
	}
	if len(resp.Body) != 10 || !resp.Truncated {
		t.Fatalf("body not capped: len=%d truncated=%v", len(resp.Body), resp.Truncated)
	}
	if !resp.OK() || resp.ContentType != "text/html" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	resp, err := New(Options{}).Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("StatusCode = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Snippet(), "blocked") {
		t.Fatalf("Snippet = %q", resp.Snippet())
	}
}

func TestGetTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Options{Timeout: 50 * time.Millisecond})
	if _, err := c.Get(context.Background(), srv.URL, nil); err == nil {
		t.Fatalf("expected timeout error")
	}
}

package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHTTPClient_NotNil(t *testing.T) {
	client := NewHTTPClient("http://localhost", time.Second)

	if client == nil || client.Client == nil {
		t.Fatal("expected non-nil client")
	}
	if client.BaseURL != "http://localhost" {
		t.Errorf("expected base url 'http://localhost', got '%s'", client.BaseURL)
	}
}

func TestNewHTTPClient_Independence(t *testing.T) {
	a := NewHTTPClient("http://a", 0)
	b := NewHTTPClient("http://b", 0)

	if a.Client == b.Client {
		t.Fatal("expected independent resty clients")
	}
}

func TestNewHTTPClient_ForwardsTraceID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(TraceIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	ctx := WithTraceID(context.Background(), "trace-1")

	if _, err := client.R().SetContext(ctx).Get("/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "trace-1" {
		t.Errorf("expected trace header 'trace-1', got '%s'", got)
	}
}

package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReverseNilClientFallsBack(t *testing.T) {
	var client *Client

	got := client.Reverse(context.Background(), -12.12345, -38.54321)
	if got != "-12.12345, -38.54321" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestReverseUsesDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "jsonv2" {
			t.Errorf("format = %s", r.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Rua das Flores, Centro"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, 2*time.Second)

	got := client.Reverse(context.Background(), -12.0, -38.0)
	if got != "Rua das Flores, Centro" {
		t.Fatalf("endereço = %q", got)
	}
}

func TestReverseServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "indisponível", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, 2*time.Second)

	got := client.Reverse(context.Background(), -12.5, -38.5)
	if got != "-12.50000, -38.50000" {
		t.Fatalf("fallback = %q", got)
	}
}

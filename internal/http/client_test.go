package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_DownloadBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "gorlock" {
			t.Errorf("User-Agent = %q, want gorlock", got)
		}
		switch r.URL.Path {
		case "/thumb.jpg":
			_, _ = w.Write([]byte("image-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient()

	data, err := client.DownloadBytes(context.Background(), srv.URL+"/thumb.jpg")
	if err != nil {
		t.Fatalf("DownloadBytes() error = %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("DownloadBytes() = %q, want %q", data, "image-bytes")
	}

	_, err = client.DownloadBytes(context.Background(), srv.URL+"/missing.jpg")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("DownloadBytes(missing) error = %v, want StatusError 404", err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient().Get(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

package tui

import (
	"context"

	"github.com/handiism/gorlock/internal/http"
	ioutils "github.com/handiism/gorlock/internal/io"
)

// Thumbnailer renders a remote image as text for the details panel.
type Thumbnailer interface {
	Render(ctx context.Context, url string, cols, rows int) (string, error)
}

// ASCIIThumbnailer downloads thumbnails and renders them as ASCII art.
type ASCIIThumbnailer struct {
	client *http.Client
	images *ioutils.ImageService
}

// NewThumbnailer creates an ASCIIThumbnailer.
func NewThumbnailer(client *http.Client, images *ioutils.ImageService) *ASCIIThumbnailer {
	return &ASCIIThumbnailer{client: client, images: images}
}

// Render implements Thumbnailer.
func (t *ASCIIThumbnailer) Render(ctx context.Context, url string, cols, rows int) (string, error) {
	data, err := t.client.DownloadBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return t.images.ASCII(ctx, data, cols, rows)
}

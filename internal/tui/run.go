package tui

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/gorlock/internal/config"
	"github.com/handiism/gorlock/internal/http"
	ioutils "github.com/handiism/gorlock/internal/io"
	"github.com/handiism/gorlock/internal/queue"
)

// Run starts the TUI and blocks until the user quits.
// The queue is always shut down before Run returns.
func Run(settings *config.Settings) error {
	q := queue.NewManager(settings, func(e queue.ProgressEvent) {
		log.Printf("[%s] %s", e.Level, e.Message)
	})

	var thumbs Thumbnailer
	if settings.ThumbnailPreview {
		thumbs = NewThumbnailer(http.NewClient(), ioutils.NewImageService())
	}

	p := tea.NewProgram(NewModel(q, settings, thumbs), tea.WithAltScreen())
	_, err := p.Run()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := q.Shutdown(ctx); serr != nil {
		log.Printf("shutdown: %v", serr)
	}
	return err
}

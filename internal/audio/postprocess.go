package audio

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/gorlock/internal/config"
	ioutils "github.com/handiism/gorlock/internal/io"
	"github.com/handiism/gorlock/internal/model"
)

// Downloader fetches small remote files such as thumbnails.
type Downloader interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// PostProcessor tags completed mp3 downloads.
//
// For every completed job whose output is an .mp3 file it writes the title,
// the uploader and the source URL, and embeds the thumbnail as front cover
// when enabled. Other files are left untouched.
type PostProcessor struct {
	settings *config.Settings
	client   Downloader
	images   *ioutils.ImageService
	tagger   *Tagger

	// sleep waits between thumbnail retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewPostProcessor creates a PostProcessor from settings.
func NewPostProcessor(settings *config.Settings, client Downloader, images *ioutils.ImageService) *PostProcessor {
	cfg := DefaultTagConfig()
	cfg.ModifyTags = settings.ModifyTags

	return &PostProcessor{
		settings: settings,
		client:   client,
		images:   images,
		tagger:   NewTagger(cfg),
		sleep:    waitForRetry,
	}
}

// Process tags job's output file. It is a no-op for non-mp3 outputs and when
// neither tags nor cover art are enabled.
func (p *PostProcessor) Process(ctx context.Context, job model.Job) error {
	if !strings.EqualFold(filepath.Ext(job.OutputPath), ".mp3") {
		return nil
	}
	if !p.settings.ModifyTags && !p.settings.EmbedThumbnailInTags {
		return nil
	}

	var artwork []byte
	if p.settings.EmbedThumbnailInTags && job.Thumbnail != "" {
		var err error
		artwork, err = p.artwork(ctx, job.Thumbnail)
		if err != nil {
			// tags are still worth writing without a cover
			log.Printf("cover art for %s: %v", job.DisplayTitle(), err)
			artwork = nil
		}
	}

	if err := p.tagger.SaveTags(job, artwork); err != nil {
		return fmt.Errorf("tagging %s: %w", filepath.Base(job.OutputPath), err)
	}
	return nil
}

// artwork downloads the thumbnail with retries and prepares it for embedding.
func (p *PostProcessor) artwork(ctx context.Context, url string) ([]byte, error) {
	tries := max(p.settings.DownloadMaxRetries, 1)

	var data []byte
	var err error
	for i := range tries {
		data, err = p.client.DownloadBytes(ctx, url)
		if err == nil || ctx.Err() != nil {
			break
		}
		if i < tries-1 {
			p.sleep(ctx, p.settings.RetryCooldown(i))
		}
	}
	if err != nil {
		return nil, err
	}

	if size := p.settings.CoverArtMaxSize; size > 0 {
		return p.images.ResizeImage(ctx, data, size, size)
	}
	return p.images.ConvertToJPEG(ctx, data)
}

func waitForRetry(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

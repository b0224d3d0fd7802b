package queue

import (
	"log"

	"github.com/handiism/gorlock/internal/audio"
	"github.com/handiism/gorlock/internal/cache"
	"github.com/handiism/gorlock/internal/config"
	"github.com/handiism/gorlock/internal/http"
	ioutils "github.com/handiism/gorlock/internal/io"
	"github.com/handiism/gorlock/internal/process"
	"github.com/handiism/gorlock/internal/ytdlp"
)

// NewManager creates a Manager running the real yt-dlp binary configured by
// settings.
//
// When the metadata cache is enabled but cannot be opened, the Manager runs
// without it and the failure is logged.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	runner := process.NewRunner(settings.GracePeriod())
	bin := settings.Binary()

	var (
		catalog  FormatFetcher    = ytdlp.NewCatalog(runner, bin)
		resolver PlaylistResolver = ytdlp.NewResolver(runner, bin)
		metadata MetadataFetcher  = ytdlp.NewMetadataFetcher(runner, bin)
	)

	if settings.CacheEnabled && settings.CachePath != "" {
		store, err := cache.Open(settings.CachePath, settings.CacheTTL())
		if err != nil {
			log.Printf("metadata cache disabled: %v", err)
		} else {
			catalog = cache.NewCatalog(catalog, store)
			resolver = cache.NewResolver(resolver, store)
			metadata = cache.NewMetadata(metadata, store)
		}
	}

	deps := Deps{
		Launcher:      ProcessLauncher(runner),
		Catalog:       catalog,
		Resolver:      resolver,
		PostProcessor: audio.NewPostProcessor(settings, http.NewClient(), ioutils.NewImageService()),
	}
	if settings.FetchMetadata {
		deps.Metadata = metadata
	}

	return New(deps, Options{
		Binary:               bin,
		Download:             settings.ToDownloadOptions(),
		MaxConcurrentFetches: settings.MaxConcurrentFetches,
		MetadataTimeout:      settings.MetadataTimeoutDuration(),
		OnProgress:           onProgress,
	})
}

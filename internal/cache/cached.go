package cache

import (
	"context"
	"log"
	"slices"

	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/ytdlp"
)

// FormatFetcher lists the formats of a URL.
type FormatFetcher interface {
	Fetch(ctx context.Context, url string) ([]model.Format, error)
}

// PlaylistResolver expands a playlist URL.
type PlaylistResolver interface {
	Resolve(ctx context.Context, url string) (*model.PlaylistPreview, error)
}

// MetadataFetcher reads the display metadata of a URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) (*ytdlp.Metadata, error)
}

// Catalog serves format listings from the store and falls back to next.
// Only successful listings are cached.
type Catalog struct {
	next  FormatFetcher
	store *Store
}

// NewCatalog wraps next with store.
func NewCatalog(next FormatFetcher, store *Store) *Catalog {
	return &Catalog{next: next, store: store}
}

func (c *Catalog) Fetch(ctx context.Context, url string) ([]model.Format, error) {
	if e, ok := c.store.Get(url); ok && len(e.Formats) > 0 {
		return slices.Clone(e.Formats), nil
	}

	formats, err := c.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.store.Update(ctx, url, func(e *Entry) { e.Formats = slices.Clone(formats) }); err != nil {
		log.Printf("cache: saving formats of %s: %v", url, err)
	}
	return formats, nil
}

// Resolver serves playlist listings from the store and falls back to next.
type Resolver struct {
	next  PlaylistResolver
	store *Store
}

// NewResolver wraps next with store.
func NewResolver(next PlaylistResolver, store *Store) *Resolver {
	return &Resolver{next: next, store: store}
}

func (r *Resolver) Resolve(ctx context.Context, url string) (*model.PlaylistPreview, error) {
	if e, ok := r.store.Get(url); ok && len(e.Playlist) > 0 {
		return &model.PlaylistPreview{SourceURL: url, Entries: slices.Clone(e.Playlist)}, nil
	}

	preview, err := r.next.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := r.store.Update(ctx, url, func(e *Entry) { e.Playlist = slices.Clone(preview.Entries) }); err != nil {
		log.Printf("cache: saving playlist %s: %v", url, err)
	}
	return preview, nil
}

// Metadata serves titles and thumbnails from the store and falls back to next.
type Metadata struct {
	next  MetadataFetcher
	store *Store
}

// NewMetadata wraps next with store.
func NewMetadata(next MetadataFetcher, store *Store) *Metadata {
	return &Metadata{next: next, store: store}
}

func (m *Metadata) Fetch(ctx context.Context, url string) (*ytdlp.Metadata, error) {
	if e, ok := m.store.Get(url); ok && e.Metadata != nil {
		md := *e.Metadata
		return &md, nil
	}

	md, err := m.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	saved := *md
	if err := m.store.Update(ctx, url, func(e *Entry) { e.Metadata = &saved }); err != nil {
		log.Printf("cache: saving metadata of %s: %v", url, err)
	}
	return md, nil
}

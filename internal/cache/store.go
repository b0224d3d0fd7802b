package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"maps"
	"os"
	"sync"
	"time"

	ioutils "github.com/handiism/gorlock/internal/io"
	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/ytdlp"
)

// DefaultTTL is how long an entry stays valid.
const DefaultTTL = 24 * time.Hour

// Entry is everything cached about one URL. Fields are filled independently
// as the corresponding tool calls succeed.
type Entry struct {
	URL       string                `json:"url"`
	Metadata  *ytdlp.Metadata       `json:"metadata,omitempty"`
	Formats   []model.Format        `json:"formats,omitempty"`
	Playlist  []model.PlaylistEntry `json:"playlist_entries,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// Store is a JSON file of Entries keyed by URL.
//
// Store is safe for concurrent use. Every change is written through to disk;
// when the write fails the in-memory change is kept and the error returned.
type Store struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry
}

// Open loads the cache at path. A missing or unreadable file yields an empty
// cache; expired entries are dropped. ttl <= 0 means DefaultTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		path:    path,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, err
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		log.Printf("cache %s: discarding unreadable file: %v", path, err)
		s.entries = make(map[string]Entry)
		return s, nil
	}
	maps.DeleteFunc(s.entries, func(_ string, e Entry) bool { return s.expired(e) })
	return s, nil
}

// Get returns the entry for url if it is still valid.
func (s *Store) Get(url string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[url]
	if !ok || s.expired(e) {
		return Entry{}, false
	}
	return e, true
}

// Update applies fn to the entry for url, creating it when missing or
// expired, refreshes its timestamp and saves the cache.
func (s *Store) Update(ctx context.Context, url string, fn func(*Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[url]
	if !ok || s.expired(e) {
		e = Entry{URL: url}
	}
	fn(&e)
	e.Timestamp = s.now()
	s.entries[url] = e
	return s.save(ctx)
}

// Invalidate removes the entry for url.
func (s *Store) Invalidate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, url)
	return s.save(ctx)
}

// Clear removes every entry and the cache file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) expired(e Entry) bool {
	return s.now().Sub(e.Timestamp) >= s.ttl
}

// save writes all entries to disk. The caller holds s.mu.
func (s *Store) save(ctx context.Context) error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(ctx, s.path, data)
}

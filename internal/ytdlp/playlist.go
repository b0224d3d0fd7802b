package ytdlp

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/handiism/gorlock/internal/model"
)

// ResolverErrorKind distinguishes resolver failures.
type ResolverErrorKind int

const (
	// ResolveProcessFailed means the listing call exited with a nonzero code.
	ResolveProcessFailed ResolverErrorKind = iota

	// ResolveEmpty means the listing succeeded but produced no entries.
	ResolveEmpty
)

// ResolverError reports that a playlist URL could not be expanded.
type ResolverError struct {
	Kind     ResolverErrorKind
	URL      string
	ExitCode int
	Stderr   string
}

func (e *ResolverError) Error() string {
	switch e.Kind {
	case ResolveEmpty:
		return fmt.Sprintf("playlist %s has no entries", e.URL)
	default:
		if msg := lastErrorLine(e.Stderr); msg != "" {
			return fmt.Sprintf("listing playlist failed (exit %d): %s", e.ExitCode, msg)
		}
		return fmt.Sprintf("listing playlist failed (exit %d)", e.ExitCode)
	}
}

const playlistTemplate = "%(id)s\t%(url)s\t%(title)s\t%(duration_string)s"

// IsPlaylistCandidate reports whether raw looks like a playlist, channel or
// album URL. It only inspects the URL and never runs yt-dlp.
//
// Example:
//
//	IsPlaylistCandidate("https://www.youtube.com/playlist?list=PL123") // true
//	IsPlaylistCandidate("https://www.youtube.com/watch?v=abc123")       // false
func IsPlaylistCandidate(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Query().Get("list") != "" {
		return true
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		switch strings.ToLower(seg) {
		case "playlist", "playlists", "sets", "album", "channel", "c":
			return true
		}
		if strings.HasPrefix(seg, "@") && i+1 < len(segments) {
			switch segments[i+1] {
			case "videos", "shorts", "streams", "playlists":
				return true
			}
		}
	}
	return false
}

// Resolver expands playlist URLs into their entries.
type Resolver struct {
	runner Outputter
	bin    string
}

// NewResolver creates a Resolver that runs bin through runner.
func NewResolver(runner Outputter, bin string) *Resolver {
	return &Resolver{runner: runner, bin: binOrDefault(bin)}
}

// Resolve lists the entries of a playlist URL in order.
//
// The returned preview has no ID; the queue assigns one. Zero entries is a
// *ResolverError of kind ResolveEmpty.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*model.PlaylistPreview, error) {
	res, err := r.runner.Output(ctx, r.bin, "--flat-playlist", "--no-warnings", "--print", playlistTemplate, rawURL)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ResolverError{
			Kind:     ResolveProcessFailed,
			URL:      rawURL,
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(res.Stderr),
		}
	}

	entries := ParseEntries(res.Stdout, rawURL)
	if len(entries) == 0 {
		return nil, &ResolverError{Kind: ResolveEmpty, URL: rawURL}
	}

	return &model.PlaylistPreview{SourceURL: rawURL, Entries: entries}, nil
}

// ParseEntries parses the tab separated --print output of a flat playlist.
//
// Entries without a URL fall back to a watch URL built from the ID when the
// playlist is on YouTube, and are dropped otherwise.
func ParseEntries(output, sourceURL string) []model.PlaylistEntry {
	youtube := isYouTube(sourceURL)

	var entries []model.PlaylistEntry
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) < 2 {
			continue
		}
		for len(parts) < 4 {
			parts = append(parts, "")
		}

		id, entryURL := field(parts[0]), field(parts[1])
		if entryURL == "" && id != "" && youtube {
			entryURL = "https://www.youtube.com/watch?v=" + id
		}
		if entryURL == "" {
			continue
		}

		entries = append(entries, model.PlaylistEntry{
			URL:      entryURL,
			Title:    field(parts[2]),
			Duration: field(parts[3]),
		})
	}
	return entries
}

func isYouTube(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "music.")
	return host == "youtube.com" || host == "youtu.be"
}

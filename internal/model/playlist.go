package model

import (
	"regexp"
	"strings"
	"time"
)

// PlaylistEntry is one item of a resolved playlist.
type PlaylistEntry struct {
	URL      string
	Title    string
	Duration string
}

// PlaylistPreview is the transient result of resolving a playlist URL.
//
// A preview is consumed exactly once: confirming turns every entry into a queued
// Job in order, cancelling discards it.
type PlaylistPreview struct {
	ID        string
	SourceURL string
	Entries   []PlaylistEntry
}

// Clone returns a deep copy of the preview.
func (p *PlaylistPreview) Clone() PlaylistPreview {
	c := *p
	c.Entries = make([]PlaylistEntry, len(p.Entries))
	copy(c.Entries, p.Entries)
	return c
}

// TotalDuration sums the parseable entry durations.
// ok is false when no entry had a usable duration.
func (p *PlaylistPreview) TotalDuration() (total time.Duration, ok bool) {
	for _, e := range p.Entries {
		if d, parsed := ParseClock(e.Duration); parsed {
			total += d
			ok = true
		}
	}
	return total, ok
}

// SanitizeFileName removes or replaces characters that are invalid in file names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	SanitizeFileName("Mix: Part 1/2") // Returns "Mix_ Part 1_2"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

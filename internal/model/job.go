package model

import (
	"path/filepath"
	"strings"
	"time"
)

// State is the lifecycle state of a Job.
type State int

const (
	// StateQueued means the job was submitted and nothing is running for it.
	StateQueued State = iota

	// StateFetchingFormats means the format catalog is being listed.
	StateFetchingFormats

	// StateAwaitingFormatChoice means formats are known and the user has to pick one.
	StateAwaitingFormatChoice

	// StateDownloading means the job owns the single active download process.
	StateDownloading

	// StateCompleted means the download process exited with code 0.
	StateCompleted

	// StateFailed means the job failed; Job.Reason holds the cause.
	StateFailed
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "Queued"
	case StateFetchingFormats:
		return "Fetching formats"
	case StateAwaitingFormatChoice:
		return "Choose format"
	case StateDownloading:
		return "Downloading"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition is possible except deletion.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransition reports whether moving from s to next is allowed.
//
// Transitions only move forward, with two exceptions: Failed is reachable from
// every non-terminal state, and FetchingFormats may fall back to Queued when the
// catalog produced unusable output so the user can retry.
func (s State) CanTransition(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	if s == StateFetchingFormats && next == StateQueued {
		return true
	}
	return next > s
}

// Job represents one requested download.
//
// The queue owns Jobs exclusively; renderers only ever receive copies inside a
// Snapshot, so mutating a Job obtained from a snapshot has no effect on the queue.
type Job struct {
	// ID is unique and stable for the job's lifetime.
	ID string

	// URL is the source URL. It never changes after creation.
	URL string

	// Title is the display name, empty until known.
	Title string

	// Duration is the human readable media length reported by the tool.
	Duration string

	// Uploader is the channel or artist name, used for audio tags.
	Uploader string

	// Thumbnail is the thumbnail image URL, if any.
	Thumbnail string

	// SelectedFormat is the format identifier chosen by the user.
	SelectedFormat string

	// Formats is the last fetched catalog, best first.
	Formats []Format

	// State is the lifecycle state.
	State State

	// Reason explains a Failed state.
	Reason string

	// Message carries a retryable error, e.g. a catalog failure that returned the job to Queued.
	Message string

	// Held is true when a start was accepted while another job owned the download slot.
	Held bool

	// Progress is the last known progress of the download.
	Progress Progress

	// Stage is the post-processing step reported by the tool (Merger, ExtractAudio, ...).
	Stage string

	// OutputPath is the last destination path reported by the tool.
	OutputPath string

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewJob creates a queued job for url.
func NewJob(id, url string) *Job {
	return &Job{
		ID:        id,
		URL:       url,
		State:     StateQueued,
		Progress:  Progress{ETA: UnknownETA},
		CreatedAt: time.Now(),
	}
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() Job {
	c := *j
	if j.Formats != nil {
		c.Formats = make([]Format, len(j.Formats))
		copy(c.Formats, j.Formats)
	}
	return c
}

// FindFormat returns the format with the given ID from the job's catalog.
func (j *Job) FindFormat(id string) (Format, bool) {
	for _, f := range j.Formats {
		if f.ID == id {
			return f, true
		}
	}
	return Format{}, false
}

// DisplayTitle returns the title, the output file name, or the URL in that order of preference.
func (j *Job) DisplayTitle() string {
	if j.Title != "" {
		return j.Title
	}
	if j.OutputPath != "" {
		name := filepath.Base(j.OutputPath)
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return j.URL
}

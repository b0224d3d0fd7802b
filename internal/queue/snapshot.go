package queue

import "github.com/handiism/gorlock/internal/model"

// Resolution is a playlist URL whose entries are being listed.
type Resolution struct {
	ID  string
	URL string
}

// Snapshot is an immutable view of the queue.
//
// Every field is a copy owned by the snapshot; the manager never mutates a
// snapshot after publishing it, so renderers may read it without locking.
type Snapshot struct {
	// Jobs in insertion order.
	Jobs []model.Job

	// Previews are resolved playlists waiting for confirmation.
	Previews []model.PlaylistPreview

	// Resolving lists playlist URLs whose listing is still running.
	Resolving []Resolution

	// Notices holds the most recent events, oldest first.
	Notices []ProgressEvent

	// AudioOnly is the format filter toggle.
	AudioOnly bool

	// ActiveID is the job owning the download slot, empty when idle.
	ActiveID string

	// Version increases with every published snapshot.
	Version uint64
}

// Job returns the job with the given ID.
func (s *Snapshot) Job(id string) (model.Job, bool) {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return model.Job{}, false
}

// Preview returns the preview with the given ID.
func (s *Snapshot) Preview(id string) (model.PlaylistPreview, bool) {
	for _, p := range s.Previews {
		if p.ID == id {
			return p, true
		}
	}
	return model.PlaylistPreview{}, false
}

// Count returns the number of jobs in state.
func (s *Snapshot) Count(state model.State) int {
	n := 0
	for _, j := range s.Jobs {
		if j.State == state {
			n++
		}
	}
	return n
}

// Formats returns the job's catalog with the audio-only filter applied.
func (s *Snapshot) Formats(job model.Job) []model.Format {
	return model.FilterAudioOnly(job.Formats, s.AudioOnly)
}

// Busy reports whether any background work is pending: a download, a held
// start, a format listing or a playlist resolution.
func (s *Snapshot) Busy() bool {
	if s.ActiveID != "" || len(s.Resolving) > 0 {
		return true
	}
	for _, j := range s.Jobs {
		if j.Held || j.State == model.StateFetchingFormats || j.State == model.StateDownloading {
			return true
		}
	}
	return false
}

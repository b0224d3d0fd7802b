package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/process"
	"github.com/handiism/gorlock/internal/ytdlp"
)

// acquire takes a fetch slot, giving up when ctx ends.
func (m *Manager) acquire(ctx context.Context) error {
	return m.sem.Acquire(ctx, 1)
}

func (m *Manager) fetchFormats(jobID, rawURL string) {
	ctx, cancel := context.WithCancel(m.ctx)
	m.fetchCancels[jobID] = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()

		var formats []model.Format
		err := m.acquire(ctx)
		if err == nil {
			formats, err = m.deps.Catalog.Fetch(ctx, rawURL)
			m.sem.Release(1)
		}

		m.post(func() { m.applyFormats(jobID, formats, err) })
	}()
}

func (m *Manager) applyFormats(jobID string, formats []model.Format, err error) {
	delete(m.fetchCancels, jobID)

	job := m.job(jobID)
	if job == nil || job.State != model.StateFetchingFormats {
		return
	}

	if err != nil {
		job.State = model.StateQueued
		job.Message = err.Error()

		level := LevelWarning
		var spawnErr *process.SpawnError
		if errors.As(err, &spawnErr) {
			level = LevelError
		}
		if errors.Is(err, context.Canceled) {
			level = LevelVerbose
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Formats for %s: %v", job.DisplayTitle(), err), Level: level, JobID: job.ID})
		return
	}

	job.Formats = formats
	job.State = model.StateAwaitingFormatChoice
	m.progress(ProgressEvent{Message: fmt.Sprintf("%d formats available for %s", len(formats), job.DisplayTitle()), Level: LevelVerbose, JobID: job.ID})
}

func (m *Manager) resolve(res Resolution) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		var preview *model.PlaylistPreview
		err := m.acquire(m.ctx)
		if err == nil {
			preview, err = m.deps.Resolver.Resolve(m.ctx, res.URL)
			m.sem.Release(1)
		}

		m.post(func() { m.applyResolution(res, preview, err) })
	}()
}

func (m *Manager) applyResolution(res Resolution, preview *model.PlaylistPreview, err error) {
	for i, r := range m.resolving {
		if r.ID == res.ID {
			m.resolving = append(m.resolving[:i], m.resolving[i+1:]...)
			break
		}
	}

	if err != nil {
		job := m.addJob(res.URL, "", "")
		job.Message = err.Error()
		m.progress(ProgressEvent{Message: fmt.Sprintf("Playlist %s: %v", res.URL, err), Level: LevelError, JobID: job.ID})
		return
	}

	if len(preview.Entries) == 1 {
		entry := preview.Entries[0]
		job := m.addJob(entry.URL, entry.Title, entry.Duration)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Queued %s", job.DisplayTitle()), Level: LevelInfo, JobID: job.ID})
		m.fetchMetadata(job.ID, job.URL)
		return
	}

	p := preview.Clone()
	p.ID = res.ID
	if p.SourceURL == "" {
		p.SourceURL = res.URL
	}
	m.previews = append(m.previews, &p)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Playlist with %d entries ready", len(p.Entries)), Level: LevelInfo})
}

func (m *Manager) fetchMetadata(jobID, rawURL string) {
	if m.deps.Metadata == nil || m.closing {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := m.ctx, context.CancelFunc(func() {})
		if m.opts.MetadataTimeout > 0 {
			ctx, cancel = context.WithTimeout(m.ctx, m.opts.MetadataTimeout)
		}
		defer cancel()

		var md *ytdlp.Metadata
		err := m.acquire(ctx)
		if err == nil {
			md, err = m.deps.Metadata.Fetch(ctx, rawURL)
			m.sem.Release(1)
		}

		m.post(func() { m.applyMetadata(jobID, md, err) })
	}()
}

func (m *Manager) applyMetadata(jobID string, md *ytdlp.Metadata, err error) {
	job := m.job(jobID)
	if job == nil {
		return
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Metadata for %s: %v", job.URL, err), Level: LevelVerbose, JobID: job.ID})
		return
	}

	if job.Title == "" {
		job.Title = md.Title
	}
	if job.Duration == "" {
		job.Duration = md.Duration
	}
	job.Thumbnail = md.Thumbnail
	job.Uploader = md.Uploader
}

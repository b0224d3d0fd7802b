package queue

import (
	"fmt"
	"time"

	ioutils "github.com/handiism/gorlock/internal/io"
	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/process"
	"github.com/handiism/gorlock/internal/ytdlp"
)

// start launches the download of job. The slot must be free.
func (m *Manager) start(job *model.Job) {
	job.Held = false

	if dir := m.opts.Download.Dir; dir != "" {
		if err := ioutils.EnsureDir(dir); err != nil {
			m.fail(job, fmt.Sprintf("creating %s: %v", dir, err))
			return
		}
	}

	args := ytdlp.DownloadArgs(job.URL, job.SelectedFormat, job.Formats, m.opts.Download)
	stream, err := m.deps.Launcher.Launch(m.ctx, m.opts.Binary, args)
	if err != nil {
		m.fail(job, err.Error())
		return
	}

	job.State = model.StateDownloading
	job.Message = ""
	job.Stage = ""
	job.Progress = model.Progress{ETA: model.UnknownETA}
	job.StartedAt = time.Now()

	m.active = &activeDownload{jobID: job.ID, stream: stream}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s", job.DisplayTitle()), Level: LevelInfo, JobID: job.ID})

	m.wg.Add(1)
	go m.pump(job.ID, stream)
}

// pump forwards process output to the manager goroutine in emission order.
func (m *Manager) pump(jobID string, stream Stream) {
	defer m.wg.Done()

	for line := range stream.Lines() {
		if !m.post(func() { m.applyLine(jobID, line) }) {
			for range stream.Lines() {
			}
			return
		}
	}
}

func (m *Manager) applyLine(jobID string, line process.Line) {
	a := m.active
	if a == nil || a.jobID != jobID {
		return
	}

	if line.Kind == process.Exited {
		m.finish(a, line.Code)
		return
	}
	if a.deleted {
		return
	}
	if line.Kind == process.Stderr {
		a.pushStderr(line.Text)
	}

	ev, ok := ytdlp.Parse(line.Text)
	if !ok {
		return
	}
	job := m.job(jobID)
	if job == nil {
		return
	}

	switch ev.Kind {
	case ytdlp.EventProgress:
		job.Progress = ev.Progress
	case ytdlp.EventDestination:
		job.OutputPath = ev.Path
		if job.Title == "" {
			job.Title = ytdlp.TitleFromPath(ev.Path)
		}
		if ev.Stage != "" {
			job.Stage = ev.Stage
		}
	case ytdlp.EventStage:
		job.Stage = ev.Stage
	case ytdlp.EventError:
		a.lastError = ev.Message
	}
}

// finish releases the download slot after the process exited.
func (m *Manager) finish(a *activeDownload, code int) {
	m.active = nil
	defer m.startNext()

	job := m.job(a.jobID)
	if a.deleted || job == nil {
		m.progress(ProgressEvent{Message: "Cancelled download stopped", Level: LevelVerbose, JobID: a.jobID})
		return
	}

	switch code {
	case 0:
		job.State = model.StateCompleted
		job.Progress.Percent = 100
		job.Progress.ETA = 0
		job.Stage = ""
		job.FinishedAt = time.Now()
		m.progress(ProgressEvent{Message: fmt.Sprintf("Completed %s", job.DisplayTitle()), Level: LevelSuccess, JobID: job.ID})
		m.postProcess(job.Clone())
	case process.ExitCancelled:
		m.fail(job, "cancelled")
	default:
		m.fail(job, a.failureReason(code))
	}
}

func (m *Manager) fail(job *model.Job, reason string) {
	job.State = model.StateFailed
	job.Reason = reason
	job.Held = false
	job.FinishedAt = time.Now()
	m.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s: %s", job.DisplayTitle(), reason), Level: LevelError, JobID: job.ID})
}

// startNext starts held jobs in request order until one owns the slot.
func (m *Manager) startNext() {
	for m.active == nil && !m.closing && len(m.held) > 0 {
		id := m.held[0]
		m.held = m.held[1:]

		job := m.job(id)
		if job == nil || !job.Held {
			continue
		}
		if job.State != model.StateQueued && job.State != model.StateAwaitingFormatChoice {
			job.Held = false
			continue
		}
		m.start(job)
	}
}

func (m *Manager) postProcess(job model.Job) {
	if m.deps.PostProcessor == nil || m.closing {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		err := m.deps.PostProcessor.Process(m.ctx, job)
		m.post(func() {
			if err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Post-processing %s: %v", job.DisplayTitle(), err), Level: LevelWarning, JobID: job.ID})
				return
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Post-processed %s", job.DisplayTitle()), Level: LevelVerbose, JobID: job.ID})
		})
	}()
}

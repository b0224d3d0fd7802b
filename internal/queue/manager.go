package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/process"
	"github.com/handiism/gorlock/internal/ytdlp"
)

var (
	// ErrClosed is returned by commands issued after Shutdown.
	ErrClosed = errors.New("queue is shut down")

	// ErrJobNotFound is returned for unknown job IDs, except by Delete.
	ErrJobNotFound = errors.New("job not found")

	// ErrPreviewNotFound is returned for unknown or already consumed previews.
	ErrPreviewNotFound = errors.New("playlist preview not found")

	// ErrInvalidState is returned when a command does not apply to the job's state.
	ErrInvalidState = errors.New("invalid job state")
)

// Stream is a running download process.
type Stream interface {
	Lines() <-chan process.Line
	Cancel()
}

// Launcher starts download processes.
type Launcher interface {
	Launch(ctx context.Context, name string, args []string) (Stream, error)
}

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

// PostProcessor runs after a job completes, e.g. to tag audio files.
type PostProcessor interface {
	Process(ctx context.Context, job model.Job) error
}

// Deps are the collaborators of a Manager. Metadata and PostProcessor are optional.
type Deps struct {
	Launcher      Launcher
	Catalog       FormatFetcher
	Resolver      PlaylistResolver
	Metadata      MetadataFetcher
	PostProcessor PostProcessor
}

// Options tune a Manager.
type Options struct {
	// Binary is the yt-dlp executable.
	Binary string

	// Download controls the download command line.
	Download ytdlp.DownloadOptions

	// MaxConcurrentFetches bounds format, playlist and metadata calls running at once.
	MaxConcurrentFetches int

	// MetadataTimeout bounds a single metadata call; zero means no limit.
	MetadataTimeout time.Duration

	// NoticeLimit is how many notices a snapshot keeps.
	NoticeLimit int

	// OnProgress receives every notice. It runs on the manager goroutine and must not block.
	OnProgress func(ProgressEvent)
}

const (
	defaultMaxFetches  = 8
	defaultNoticeLimit = 10
	stderrTailLines    = 20
)

// ProcessLauncher adapts a process.Runner to Launcher.
func ProcessLauncher(r *process.Runner) Launcher {
	return processLauncher{runner: r}
}

type processLauncher struct {
	runner *process.Runner
}

func (l processLauncher) Launch(ctx context.Context, name string, args []string) (Stream, error) {
	s, err := l.runner.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Manager owns the download queue.
//
// All queue state belongs to a single goroutine. Commands are sent to it as
// messages and return once applied in memory; process output and background
// results arrive the same way, in order. After every message a new Snapshot
// is published, so Snapshot never blocks.
//
// Example:
//
//	m := queue.New(deps, queue.Options{Binary: "yt-dlp"})
//	defer m.Shutdown(context.Background())
//
//	id, _ := m.Submit("https://www.youtube.com/watch?v=abc123")
//	_ = m.FetchFormats(id)
//	// ... once the job is AwaitingFormatChoice:
//	_ = m.SelectFormat(id, snap.Jobs[0].Formats[0].ID)
type Manager struct {
	deps Deps
	opts Options

	msgs chan message
	quit chan struct{}
	done chan struct{}

	snap atomic.Pointer[Snapshot]

	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	wg     sync.WaitGroup

	shutdownOnce sync.Once

	// owned by the loop goroutine
	jobs         []*model.Job
	previews     []*model.PlaylistPreview
	resolving    []Resolution
	notices      []ProgressEvent
	audioOnly    bool
	active       *activeDownload
	held         []string
	fetchCancels map[string]context.CancelFunc
	closing      bool
	version      uint64
}

// activeDownload is the job owning the single download slot.
type activeDownload struct {
	jobID     string
	stream    Stream
	deleted   bool
	lastError string
	stderr    []string
}

func (a *activeDownload) pushStderr(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	a.stderr = append(a.stderr, line)
	if len(a.stderr) > stderrTailLines {
		a.stderr = a.stderr[len(a.stderr)-stderrTailLines:]
	}
}

// failureReason explains a nonzero exit: the last ERROR message, else the
// stderr tail, else the exit status.
func (a *activeDownload) failureReason(code int) string {
	if a.lastError != "" {
		return a.lastError
	}
	if tail := strings.TrimSpace(strings.Join(a.stderr, "\n")); tail != "" {
		return tail
	}
	if code == process.ExitKilled {
		return "killed"
	}
	return fmt.Sprintf("exit status %d", code)
}

// New creates a Manager and starts its goroutine.
func New(deps Deps, opts Options) *Manager {
	if opts.Binary == "" {
		opts.Binary = ytdlp.DefaultBinary
	}
	if opts.MaxConcurrentFetches <= 0 {
		opts.MaxConcurrentFetches = defaultMaxFetches
	}
	if opts.NoticeLimit <= 0 {
		opts.NoticeLimit = defaultNoticeLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		deps:         deps,
		opts:         opts,
		msgs:         make(chan message, 64),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		sem:          semaphore.NewWeighted(int64(opts.MaxConcurrentFetches)),
		fetchCancels: make(map[string]context.CancelFunc),
	}
	m.publish()

	go m.loop()
	return m
}

// Snapshot returns the latest published state. It never blocks.
func (m *Manager) Snapshot() *Snapshot {
	return m.snap.Load()
}

// Submit adds a URL to the queue.
//
// A URL that does not look like a playlist becomes one Queued job whose ID is
// returned. A playlist-shaped URL is resolved in the background and the
// returned ID is empty; the result shows up as a preview, as a single job when
// the playlist has one entry, or as a Queued job carrying the resolver error.
func (m *Manager) Submit(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := ytdlp.ValidateURL(rawURL); err != nil {
		return "", err
	}

	var id string
	err := m.call(func() error {
		if !ytdlp.IsPlaylistCandidate(rawURL) {
			job := m.addJob(rawURL, "", "")
			m.progress(ProgressEvent{Message: fmt.Sprintf("Queued %s", rawURL), Level: LevelInfo, JobID: job.ID})
			m.fetchMetadata(job.ID, rawURL)
			id = job.ID
			return nil
		}

		res := Resolution{ID: uuid.NewString(), URL: rawURL}
		m.resolving = append(m.resolving, res)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Resolving playlist %s", rawURL), Level: LevelVerbose})
		m.resolve(res)
		return nil
	})
	return id, err
}

// ConfirmPlaylist turns every entry of a preview into a Queued job, in order,
// and returns their IDs.
func (m *Manager) ConfirmPlaylist(previewID string) ([]string, error) {
	var ids []string
	err := m.call(func() error {
		idx := m.previewIndex(previewID)
		if idx < 0 {
			return ErrPreviewNotFound
		}
		preview := m.previews[idx]
		m.previews = append(m.previews[:idx], m.previews[idx+1:]...)

		for _, entry := range preview.Entries {
			job := m.addJob(entry.URL, entry.Title, entry.Duration)
			ids = append(ids, job.ID)
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Queued %d playlist entries", len(ids)), Level: LevelInfo})
		return nil
	})
	return ids, err
}

// CancelPlaylist discards a preview without creating jobs.
func (m *Manager) CancelPlaylist(previewID string) error {
	return m.call(func() error {
		idx := m.previewIndex(previewID)
		if idx < 0 {
			return ErrPreviewNotFound
		}
		m.previews = append(m.previews[:idx], m.previews[idx+1:]...)
		m.progress(ProgressEvent{Message: "Playlist discarded", Level: LevelVerbose})
		return nil
	})
}

// FetchFormats lists the formats of a job in the background. The job moves to
// FetchingFormats, then to AwaitingFormatChoice, or back to Queued with a
// message when the listing fails.
func (m *Manager) FetchFormats(jobID string) error {
	return m.call(func() error {
		job := m.job(jobID)
		if job == nil {
			return ErrJobNotFound
		}
		switch job.State {
		case model.StateFetchingFormats:
			return nil
		case model.StateQueued, model.StateAwaitingFormatChoice:
		default:
			return fmt.Errorf("%w: cannot fetch formats while %s", ErrInvalidState, job.State)
		}
		if job.Held {
			return fmt.Errorf("%w: download already requested", ErrInvalidState)
		}

		job.State = model.StateFetchingFormats
		job.Message = ""
		m.fetchFormats(job.ID, job.URL)
		return nil
	})
}

// SelectFormat records the chosen format and starts the download. When
// another job owns the download slot the request is held and started
// automatically, in request order, once the slot frees.
func (m *Manager) SelectFormat(jobID, formatID string) error {
	formatID = strings.TrimSpace(formatID)
	if formatID == "" {
		return fmt.Errorf("%w: empty format", ErrInvalidState)
	}

	return m.call(func() error {
		job := m.job(jobID)
		if job == nil {
			return ErrJobNotFound
		}
		if job.State != model.StateQueued && job.State != model.StateAwaitingFormatChoice {
			return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, job.State)
		}

		job.SelectedFormat = formatID
		if m.active != nil {
			if !job.Held {
				job.Held = true
				m.held = append(m.held, job.ID)
				m.progress(ProgressEvent{Message: fmt.Sprintf("Waiting for the active download: %s", job.DisplayTitle()), Level: LevelInfo, JobID: job.ID})
			}
			return nil
		}

		m.start(job)
		return nil
	})
}

// ToggleAudioOnly flips the audio-only format filter and returns its new value.
// Job catalogs are not modified; see Snapshot.Formats.
func (m *Manager) ToggleAudioOnly() (bool, error) {
	var on bool
	err := m.call(func() error {
		m.audioOnly = !m.audioOnly
		on = m.audioOnly
		return nil
	})
	return on, err
}

// Delete removes a job. If it owns the download slot, its process is
// cancelled first; the next held job starts once that process has exited.
// Unknown IDs are ignored.
func (m *Manager) Delete(jobID string) error {
	return m.call(func() error {
		idx := m.jobIndex(jobID)
		if idx < 0 {
			return nil
		}
		job := m.jobs[idx]

		if a := m.active; a != nil && a.jobID == jobID && !a.deleted {
			a.deleted = true
			a.stream.Cancel()
		}
		if cancel, ok := m.fetchCancels[jobID]; ok {
			cancel()
			delete(m.fetchCancels, jobID)
		}

		m.jobs = append(m.jobs[:idx], m.jobs[idx+1:]...)
		m.unhold(jobID)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Removed %s", job.DisplayTitle()), Level: LevelVerbose})
		return nil
	})
}

// Shutdown cancels the active download and all background work, waits for
// them to finish and stops the manager. Later commands return ErrClosed.
func (m *Manager) Shutdown(ctx context.Context) error {
	var stream Stream
	err := m.call(func() error {
		m.closing = true
		m.held = nil
		for _, job := range m.jobs {
			job.Held = false
		}
		if m.active != nil {
			stream = m.active.stream
		}
		return nil
	})
	if errors.Is(err, ErrClosed) {
		return nil
	}

	m.cancel()
	if stream != nil {
		stream.Cancel()
	}

	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.shutdownOnce.Do(func() { close(m.quit) })
	<-m.done
	return nil
}

func (m *Manager) addJob(rawURL, title, duration string) *model.Job {
	job := model.NewJob(uuid.NewString(), rawURL)
	job.Title = title
	job.Duration = duration
	m.jobs = append(m.jobs, job)
	return job
}

func (m *Manager) job(id string) *model.Job {
	if idx := m.jobIndex(id); idx >= 0 {
		return m.jobs[idx]
	}
	return nil
}

func (m *Manager) jobIndex(id string) int {
	for i, j := range m.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) previewIndex(id string) int {
	for i, p := range m.previews {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) unhold(jobID string) {
	for i, id := range m.held {
		if id == jobID {
			m.held = append(m.held[:i], m.held[i+1:]...)
			return
		}
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	m.notices = append(m.notices, event)
	if len(m.notices) > m.opts.NoticeLimit {
		m.notices = m.notices[len(m.notices)-m.opts.NoticeLimit:]
	}
	if m.opts.OnProgress != nil {
		m.opts.OnProgress(event)
	}
}

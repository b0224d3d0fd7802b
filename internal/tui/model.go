package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/gorlock/internal/audio"
	"github.com/handiism/gorlock/internal/config"
	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/queue"
	"github.com/handiism/gorlock/internal/ytdlp"
)

// tickInterval is how often the UI re-reads the queue snapshot.
const tickInterval = 100 * time.Millisecond

const shutdownTimeout = 10 * time.Second

// Queue is the part of the queue manager the UI drives.
type Queue interface {
	Submit(url string) (string, error)
	ConfirmPlaylist(previewID string) ([]string, error)
	CancelPlaylist(previewID string) error
	FetchFormats(jobID string) error
	SelectFormat(jobID, formatID string) error
	ToggleAudioOnly() (bool, error)
	Delete(jobID string) error
	Shutdown(ctx context.Context) error
	Snapshot() *queue.Snapshot
}

type mode int

const (
	modeQueue mode = iota
	modeInput
	modeFormats
	modePlaylist
)

// Messages
type (
	// TickMsg triggers a snapshot refresh.
	TickMsg time.Time

	thumbnailMsg struct {
		url string
		art string
		err error
	}

	exportMsg struct {
		path string
		err  error
	}

	shutdownMsg struct{ err error }
)

// Model is the bubbletea model of the download queue.
type Model struct {
	queue    Queue
	settings *config.Settings
	thumbs   Thumbnailer
	keys     keyMap

	snap *queue.Snapshot
	mode mode

	table    table.Model
	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model
	help     help.Model

	formatJob    string
	formatCursor int

	// pendingFormats is the job whose format popup opens once its catalog arrives.
	pendingFormats string

	playlistCursor int

	art        map[string]string
	artLoading map[string]bool

	completed int
	verbose   bool
	status    string
	errMsg    string
	quitting  bool

	width  int
	height int
}

// NewModel creates the UI model. thumbs may be nil to disable thumbnails.
func NewModel(q Queue, settings *config.Settings, thumbs Thumbnailer) Model {
	keys := defaultKeyMap()

	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Prompt = "URL: "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = subtitleStyle

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithKeyMap(keys.tableKeyMap()),
		table.WithStyles(tableStyles()),
	)

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)

	m := Model{
		queue:      q,
		settings:   settings,
		thumbs:     thumbs,
		keys:       keys,
		snap:       q.Snapshot(),
		table:      t,
		input:      ti,
		spinner:    s,
		progress:   p,
		help:       help.New(),
		art:        make(map[string]string),
		artLoading: make(map[string]bool),
	}
	m.completed = m.snap.Count(model.StateCompleted)
	m.table.SetRows(rows(m.snap))
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m.quit()
		}
		if m.quitting {
			return m, nil
		}
		if m.errMsg != "" {
			m.errMsg = ""
			return m, nil
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case TickMsg:
		if m.quitting {
			return m, nil
		}
		cmd := m.refresh()
		return m, tea.Batch(tickCmd(), cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case thumbnailMsg:
		delete(m.artLoading, msg.url)
		if msg.err != nil {
			// an empty entry stops further attempts for this URL
			m.art[msg.url] = ""
			return m, nil
		}
		m.art[msg.url] = msg.art
		return m, nil

	case exportMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Playlist export failed: %v", msg.err)
		} else {
			m.status = "Playlist written to " + msg.path
		}
		return m, nil

	case shutdownMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeInput:
		return m.handleInputKey(msg)
	case modeFormats:
		return m.handleFormatKey(msg)
	case modePlaylist:
		return m.handlePlaylistKey(msg)
	default:
		return m.handleQueueKey(msg)
	}
}

func (m Model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Input):
		m.mode = modeInput
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Enter):
		job, ok := m.selected()
		if !ok {
			return m, nil
		}
		switch job.State {
		case model.StateAwaitingFormatChoice:
			m.openFormats(job.ID)
		case model.StateQueued:
			m.fetchFormats(job.ID)
		case model.StateFetchingFormats:
			m.pendingFormats = job.ID
		}
		return m, nil

	case key.Matches(msg, m.keys.Fetch):
		if job, ok := m.selected(); ok {
			m.fetchFormats(job.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if job, ok := m.selected(); ok {
			if err := m.queue.Delete(job.ID); err != nil {
				m.errMsg = err.Error()
			}
			if m.pendingFormats == job.ID {
				m.pendingFormats = ""
			}
		}
		return m, m.refresh()

	case key.Matches(msg, m.keys.AudioOnly):
		m.toggleAudioOnly()
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()

	case key.Matches(msg, m.keys.Verbose):
		m.verbose = !m.verbose
		return m, nil
	}

	before := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before {
		return m, tea.Batch(cmd, m.onSelect())
	}
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeQueue
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		url := strings.TrimSpace(m.input.Value())
		if url == "" {
			return m, nil
		}
		id, err := m.queue.Submit(url)
		if err != nil {
			m.errMsg = submitError(err)
			return m, nil
		}
		m.input.Blur()
		m.input.Reset()
		m.mode = modeQueue
		if id == "" {
			m.status = "Resolving playlist..."
		} else {
			m.status = "Added " + url
		}
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleFormatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	job, ok := m.snap.Job(m.formatJob)
	if !ok {
		m.closeFormats()
		return m, nil
	}
	formats := m.snap.Formats(job)

	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeFormats()

	case key.Matches(msg, m.keys.Up):
		if m.formatCursor > 0 {
			m.formatCursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.formatCursor < len(formats)-1 {
			m.formatCursor++
		}

	case key.Matches(msg, m.keys.AudioOnly):
		m.toggleAudioOnly()
		m.formatCursor = 0

	case key.Matches(msg, m.keys.Enter):
		if m.formatCursor >= len(formats) {
			return m, nil
		}
		f := formats[m.formatCursor]
		if err := m.queue.SelectFormat(job.ID, f.ID); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Selected format %s for %s", f.ID, job.DisplayTitle())
		m.closeFormats()
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) handlePlaylistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.snap.Previews) == 0 {
		m.mode = modeQueue
		return m, nil
	}
	preview := m.snap.Previews[0]

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.playlistCursor > 0 {
			m.playlistCursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.playlistCursor < len(preview.Entries)-1 {
			m.playlistCursor++
		}

	case key.Matches(msg, m.keys.Enter):
		ids, err := m.queue.ConfirmPlaylist(preview.ID)
		if err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = fmt.Sprintf("Queued %d playlist entries", len(ids))
		}
		m.mode = modeQueue
		return m, m.refresh()

	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		if err := m.queue.CancelPlaylist(preview.ID); err != nil {
			m.errMsg = err.Error()
		}
		m.mode = modeQueue
		return m, m.refresh()
	}
	return m, nil
}

// refresh loads the latest snapshot and reconciles UI state with it.
func (m *Model) refresh() tea.Cmd {
	snap := m.queue.Snapshot()
	changed := snap.Version != m.snap.Version
	m.snap = snap
	if changed {
		m.table.SetRows(rows(snap))
		if n := len(snap.Jobs); n > 0 && m.table.Cursor() >= n {
			m.table.SetCursor(n - 1)
		}
	}

	var cmds []tea.Cmd

	if m.pendingFormats != "" {
		job, ok := snap.Job(m.pendingFormats)
		switch {
		case !ok:
			m.pendingFormats = ""
		case job.State == model.StateAwaitingFormatChoice:
			if m.mode == modeQueue {
				m.openFormats(job.ID)
			}
			m.pendingFormats = ""
		case job.State == model.StateQueued && job.Message != "":
			m.errMsg = job.Message
			m.pendingFormats = ""
		case job.State.IsTerminal():
			m.pendingFormats = ""
		}
	}

	switch m.mode {
	case modeQueue:
		if len(snap.Previews) > 0 {
			m.mode = modePlaylist
			m.playlistCursor = 0
		}
	case modePlaylist:
		if len(snap.Previews) == 0 {
			m.mode = modeQueue
		}
	case modeFormats:
		if job, ok := snap.Job(m.formatJob); !ok || job.State != model.StateAwaitingFormatChoice {
			m.closeFormats()
		}
	}

	if done := snap.Count(model.StateCompleted); done > m.completed {
		if m.settings.CreatePlaylist {
			cmds = append(cmds, m.exportCmd())
		}
		m.completed = done
	} else if done < m.completed {
		m.completed = done
	}

	cmds = append(cmds, m.thumbnailCmd())
	return tea.Batch(cmds...)
}

func (m *Model) onSelect() tea.Cmd {
	job, ok := m.selected()
	if !ok {
		return nil
	}
	// prefetch so the popup is ready when the user asks for it
	if job.State == model.StateQueued && job.Formats == nil && job.Message == "" && !job.Held {
		if err := m.queue.FetchFormats(job.ID); err != nil && !errors.Is(err, queue.ErrInvalidState) {
			m.errMsg = err.Error()
		}
	}
	return m.thumbnailCmd()
}

func (m *Model) fetchFormats(id string) {
	if err := m.queue.FetchFormats(id); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.pendingFormats = id
}

func (m *Model) openFormats(id string) {
	m.mode = modeFormats
	m.formatJob = id
	m.formatCursor = 0
}

func (m *Model) closeFormats() {
	m.mode = modeQueue
	m.formatJob = ""
	m.formatCursor = 0
}

func (m *Model) toggleAudioOnly() {
	on, err := m.queue.ToggleAudioOnly()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if on {
		m.status = "Showing audio-only formats"
	} else {
		m.status = "Showing all formats"
	}
	m.snap = m.queue.Snapshot()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	m.quitting = true
	m.status = "Stopping downloads..."
	q := m.queue
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdownMsg{err: q.Shutdown(ctx)}
	}
}

func (m Model) selected() (model.Job, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.snap.Jobs) {
		return model.Job{}, false
	}
	return m.snap.Jobs[i], true
}

func (m Model) exportCmd() tea.Cmd {
	creator := audio.NewPlaylistCreator(m.settings.ToPlaylistFormat(), m.settings.M3UExtended)
	dir := m.settings.DownloadsPath
	jobs := m.snap.Jobs
	return func() tea.Msg {
		path, err := creator.Export(context.Background(), dir, jobs)
		return exportMsg{path: path, err: err}
	}
}

func (m *Model) thumbnailCmd() tea.Cmd {
	if m.thumbs == nil || !m.settings.ThumbnailPreview {
		return nil
	}
	job, ok := m.selected()
	if !ok || job.Thumbnail == "" {
		return nil
	}
	url := job.Thumbnail
	if _, done := m.art[url]; done || m.artLoading[url] {
		return nil
	}
	m.artLoading[url] = true

	thumbs := m.thumbs
	cols, rows := m.settings.ThumbnailWidth, m.settings.ThumbnailHeight
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		art, err := thumbs.Render(ctx, url, cols, rows)
		return thumbnailMsg{url: url, art: art, err: err}
	}
}

func (m *Model) resize() {
	w := max(m.width-4, 40)
	m.table.SetColumns(columns(w))
	m.table.SetWidth(w)
	m.table.SetHeight(max(m.height/2-4, 5))
	m.progress.Width = max(min(w/2, 60), 10)
	m.input.Width = max(w-10, 20)
	m.help.Width = w
}

func submitError(err error) string {
	if errors.Is(err, ytdlp.ErrInvalidURL) {
		return "Please enter a valid http(s) URL"
	}
	return err.Error()
}

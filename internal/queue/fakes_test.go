package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/process"
	"github.com/handiism/gorlock/internal/ytdlp"
)

type fakeStream struct {
	lines     chan process.Line
	cancelled chan struct{}
	autoExit  bool
	onCancel  func()

	cancelOnce sync.Once
	endOnce    sync.Once
}

func newFakeStream(autoExit bool) *fakeStream {
	return &fakeStream{
		lines:     make(chan process.Line, 128),
		cancelled: make(chan struct{}),
		autoExit:  autoExit,
	}
}

func (s *fakeStream) Lines() <-chan process.Line {
	return s.lines
}

func (s *fakeStream) Cancel() {
	s.cancelOnce.Do(func() {
		if s.onCancel != nil {
			s.onCancel()
		}
		close(s.cancelled)
		if s.autoExit {
			s.end(process.ExitCancelled)
		}
	})
}

func (s *fakeStream) emit(kind process.LineKind, text string) {
	s.lines <- process.Line{Kind: kind, Text: text}
}

func (s *fakeStream) end(code int) {
	s.endOnce.Do(func() {
		s.lines <- process.Line{Kind: process.Exited, Code: code}
		close(s.lines)
	})
}

func (s *fakeStream) wasCancelled() bool {
	select {
	case <-s.cancelled:
		return true
	default:
		return false
	}
}

type fakeLauncher struct {
	mu       sync.Mutex
	streams  []*fakeStream
	args     [][]string
	err      error
	autoExit bool
	onCancel func()
}

func (l *fakeLauncher) Launch(_ context.Context, _ string, args []string) (Stream, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}
	s := newFakeStream(l.autoExit)
	s.onCancel = l.onCancel
	l.streams = append(l.streams, s)
	l.args = append(l.args, args)
	return s, nil
}

func (l *fakeLauncher) stream(t *testing.T, i int) *fakeStream {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if i >= len(l.streams) {
		t.Fatalf("stream %d not launched (have %d)", i, len(l.streams))
	}
	return l.streams[i]
}

func (l *fakeLauncher) launched() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.streams)
}

type fakeCatalog struct {
	formats []model.Format
	err     error
	gate    chan struct{}
	calls   atomic.Int32
}

func (c *fakeCatalog) Fetch(ctx context.Context, _ string) ([]model.Format, error) {
	c.calls.Add(1)
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.formats, c.err
}

type fakeResolver struct {
	preview *model.PlaylistPreview
	err     error
	calls   atomic.Int32
}

func (r *fakeResolver) Resolve(_ context.Context, rawURL string) (*model.PlaylistPreview, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	p := r.preview.Clone()
	p.SourceURL = rawURL
	return &p, nil
}

type fakeMetadata struct {
	md  *ytdlp.Metadata
	err error
}

func (f *fakeMetadata) Fetch(context.Context, string) (*ytdlp.Metadata, error) {
	return f.md, f.err
}

type fakePostProcessor struct {
	mu   sync.Mutex
	jobs []model.Job
}

func (p *fakePostProcessor) Process(_ context.Context, job model.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *fakePostProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

type testEnv struct {
	m        *Manager
	launcher *fakeLauncher
	catalog  *fakeCatalog
	resolver *fakeResolver
}

func newTestEnv(t *testing.T, configure func(*Deps, *Options)) *testEnv {
	t.Helper()

	env := &testEnv{
		launcher: &fakeLauncher{autoExit: true},
		catalog: &fakeCatalog{formats: []model.Format{
			{ID: "137", Extension: "mp4", Resolution: "1920x1080", VideoOnly: true},
			{ID: "18", Extension: "mp4", Resolution: "640x360"},
			{ID: "140", Extension: "m4a", AudioOnly: true},
		}},
		resolver: &fakeResolver{preview: &model.PlaylistPreview{Entries: []model.PlaylistEntry{
			{URL: "https://www.youtube.com/watch?v=a1", Title: "First"},
			{URL: "https://www.youtube.com/watch?v=b2", Title: "Second"},
			{URL: "https://www.youtube.com/watch?v=c3", Title: "Third"},
		}}},
	}

	deps := Deps{Launcher: env.launcher, Catalog: env.catalog, Resolver: env.resolver}
	opts := Options{Binary: "yt-dlp"}
	if configure != nil {
		configure(&deps, &opts)
	}

	env.m = New(deps, opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = env.m.Shutdown(ctx)
	})
	return env
}

// waitFor polls snapshots until cond holds.
func waitFor(t *testing.T, m *Manager, what string, cond func(*Snapshot) bool) *Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s := m.Snapshot(); cond(s) {
			return s
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
	return nil
}

func jobInState(id string, state model.State) func(*Snapshot) bool {
	return func(s *Snapshot) bool {
		j, ok := s.Job(id)
		return ok && j.State == state
	}
}

// submitJobs queues n single-video jobs and returns their IDs.
func submitJobs(t *testing.T, m *Manager, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		id, err := m.Submit("https://example.com/watch?v=video" + string(rune('a'+i)))
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		ids[i] = id
	}
	return ids
}

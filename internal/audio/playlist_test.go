package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/gorlock/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	jobs := createTestJobs()
	creator := NewPlaylistCreator(model.PlaylistFormatM3U, false)

	content := creator.CreatePlaylist("gorlock", "/downloads", jobs)

	want := "First Video.mp4\nsub/Second.mp3\n"
	if content != want {
		t.Errorf("CreatePlaylist() = %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	jobs := createTestJobs()
	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)

	content := creator.CreatePlaylist("gorlock", "/downloads", jobs)

	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:212,Someone - First Video\n") {
		t.Errorf("missing EXTINF for the first job:\n%s", content)
	}
	if !strings.Contains(content, "#EXTINF:-1,Second\n") {
		t.Errorf("unknown duration should be -1:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	jobs := createTestJobs()
	creator := NewPlaylistCreator(model.PlaylistFormatPLS, false)

	content := creator.CreatePlaylist("gorlock", "/downloads", jobs)

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=First Video.mp4") {
		t.Error("PLS should contain File1=")
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Errorf("PLS should list only completed jobs:\n%s", content)
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatWPL, false)

	content := creator.CreatePlaylist("gorlock", "/downloads", createTestJobs())

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<smil>") {
		t.Error("WPL should contain smil element")
	}
	if !strings.Contains(content, "<media src=") {
		t.Error("WPL should contain media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatZPL, false)

	content := creator.CreatePlaylist("gorlock", "/downloads", createTestJobs())

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `duration="212000"`) {
		t.Errorf("ZPL should carry durations in milliseconds:\n%s", content)
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	job := model.NewJob("1", "https://example.com/v")
	job.State = model.StateCompleted
	job.Title = `Track & "Quote" <Special>`
	job.OutputPath = "/downloads/a & b.mp4"

	creator := NewPlaylistCreator(model.PlaylistFormatWPL, false)
	content := creator.CreatePlaylist("Mine & Yours", "/downloads", []model.Job{job.Clone()})

	if !strings.Contains(content, "Mine &amp; Yours") || !strings.Contains(content, "a &amp; b.mp4") {
		t.Errorf("WPL should escape & as &amp;:\n%s", content)
	}
}

func TestPlaylistCreator_OutsideDirIsAbsolute(t *testing.T) {
	job := model.NewJob("1", "https://example.com/v")
	job.State = model.StateCompleted
	job.OutputPath = "/elsewhere/file.mp4"

	creator := NewPlaylistCreator(model.PlaylistFormatM3U, false)
	content := creator.CreatePlaylist("gorlock", "/downloads", []model.Job{job.Clone()})

	if content != "/elsewhere/file.mp4\n" {
		t.Errorf("CreatePlaylist() = %q, want the absolute path", content)
	}
}

func TestPlaylistCreator_Export(t *testing.T) {
	dir := t.TempDir()
	jobs := createTestJobs()
	for i := range jobs {
		if jobs[i].OutputPath != "" {
			jobs[i].OutputPath = filepath.Join(dir, filepath.Base(jobs[i].OutputPath))
		}
	}

	creator := NewPlaylistCreator(model.PlaylistFormatPLS, false)
	path, err := creator.Export(context.Background(), dir, jobs)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if path != filepath.Join(dir, "gorlock.pls") {
		t.Errorf("Export() path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "File2=Second.mp3") {
		t.Errorf("exported playlist:\n%s", data)
	}

	if _, err := creator.Export(context.Background(), dir, nil); err == nil {
		t.Error("Export() with no completed jobs should fail")
	}
}

func createTestJobs() []model.Job {
	first := model.NewJob("1", "https://example.com/1")
	first.State = model.StateCompleted
	first.Title = "First Video"
	first.Uploader = "Someone"
	first.Duration = "3:32"
	first.OutputPath = "/downloads/First Video.mp4"

	second := model.NewJob("2", "https://example.com/2")
	second.State = model.StateCompleted
	second.OutputPath = "/downloads/sub/Second.mp3"

	failed := model.NewJob("3", "https://example.com/3")
	failed.State = model.StateFailed
	failed.OutputPath = "/downloads/partial.mp4"

	queued := model.NewJob("4", "https://example.com/4")

	return []model.Job{first.Clone(), second.Clone(), failed.Clone(), queued.Clone()}
}

package queue

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/handiism/gorlock/internal/config"
	"github.com/handiism/gorlock/internal/model"
)

// fakeYtDlp answers the three invocations the manager makes: format listing,
// metadata printing and downloading.
const fakeYtDlp = `#!/bin/sh
for a in "$@"; do
  case "$a" in
    --list-formats)
      cat <<'EOT'
[info] Available formats for abc123:
ID  EXT   RESOLUTION FPS CH │   FILESIZE   TBR PROTO │ VCODEC          VBR ACODEC      ABR ASR MORE INFO
───────────────────────────────────────────────────────────────────────────────────────────────────────────
140 m4a   audio only      2 │    3.24MiB  129k https │ audio only          mp4a.40.2  129k 44k medium, m4a_dash
18  mp4   640x360     30  2 │ ≈ 10.56MiB  338k https │ avc1.42001E        mp4a.40.2       44k 360p
EOT
      exit 0
      ;;
    --skip-download)
      printf 'Shell Video\t0:42\tNA\tTester\n'
      exit 0
      ;;
  esac
done

out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
dest="$(dirname "$out")/Shell Video.mp4"
echo "[download] Destination: $dest"
echo "[download]  50.0% of 1.00MiB at 1.00MiB/s ETA 00:01"
echo "[download] 100% of 1.00MiB in 00:00:01 at 1.00MiB/s"
: > "$dest"
`

func TestManager_WithProcessRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "yt-dlp")
	if err := os.WriteFile(script, []byte(fakeYtDlp), 0755); err != nil {
		t.Fatal(err)
	}

	settings := config.DefaultSettings()
	settings.YtDlpPath = script
	settings.DownloadsPath = filepath.Join(dir, "downloads")
	settings.CacheEnabled = false
	settings.EmbedThumbnailInTags = false

	m := NewManager(settings, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})

	id, err := m.Submit("https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitFor(t, m, "metadata", func(s *Snapshot) bool {
		j, _ := s.Job(id)
		return j.Title == "Shell Video"
	})

	if err := m.FetchFormats(id); err != nil {
		t.Fatalf("FetchFormats() error = %v", err)
	}
	snap := waitFor(t, m, "formats", jobInState(id, model.StateAwaitingFormatChoice))
	job, _ := snap.Job(id)
	if len(job.Formats) != 2 || job.Formats[0].ID != "18" {
		t.Fatalf("Formats = %+v, want 18 then 140", job.Formats)
	}

	if err := m.SelectFormat(id, "18"); err != nil {
		t.Fatalf("SelectFormat() error = %v", err)
	}
	snap = waitFor(t, m, "completion", func(s *Snapshot) bool {
		j, _ := s.Job(id)
		return j.State.IsTerminal()
	})

	job, _ = snap.Job(id)
	if job.State != model.StateCompleted {
		t.Fatalf("State = %v (%s), want Completed", job.State, job.Reason)
	}
	want := filepath.Join(settings.DownloadsPath, "Shell Video.mp4")
	if job.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", job.OutputPath, want)
	}
	if job.Uploader != "Tester" || job.Duration != "0:42" || job.Thumbnail != "" {
		t.Errorf("metadata = %q %q %q", job.Uploader, job.Duration, job.Thumbnail)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

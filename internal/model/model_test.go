package model

import (
	"testing"
	"time"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file.mp3", "normal-file.mp3"},
		{"file:with:colons.mp3", "file_with_colons.mp3"},
		{"file<with>brackets.mp3", "file_with_brackets.mp3"},
		{"file/with\\slashes.mp3", "file_with_slashes.mp3"},
		{"file|with|pipes.mp3", "file_with_pipes.mp3"},
		{"file?with*wildcards.mp3", "file_with_wildcards.mp3"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"queued to fetching", StateQueued, StateFetchingFormats, true},
		{"queued to downloading", StateQueued, StateDownloading, true},
		{"fetching back to queued", StateFetchingFormats, StateQueued, true},
		{"awaiting back to queued", StateAwaitingFormatChoice, StateQueued, false},
		{"downloading to completed", StateDownloading, StateCompleted, true},
		{"downloading to failed", StateDownloading, StateFailed, true},
		{"downloading back to awaiting", StateDownloading, StateAwaitingFormatChoice, false},
		{"completed to failed", StateCompleted, StateFailed, false},
		{"failed to queued", StateFailed, StateQueued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("%v.CanTransition(%v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestJob_CloneIsIndependent(t *testing.T) {
	job := NewJob("id", "https://example.com/v")
	job.Formats = []Format{{ID: "22", Extension: "mp4"}}

	c := job.Clone()
	c.Formats[0].ID = "changed"
	c.Title = "changed"

	if job.Formats[0].ID != "22" {
		t.Errorf("original format ID = %q, want %q", job.Formats[0].ID, "22")
	}
	if job.Title != "" {
		t.Errorf("original title = %q, want empty", job.Title)
	}
}

func TestJob_DisplayTitle(t *testing.T) {
	job := NewJob("id", "https://example.com/v")
	if got := job.DisplayTitle(); got != "https://example.com/v" {
		t.Errorf("DisplayTitle() = %q, want URL", got)
	}

	job.OutputPath = "/tmp/downloads/Some Video.mp4"
	if got := job.DisplayTitle(); got != "Some Video" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Some Video")
	}

	job.Title = "Real Title"
	if got := job.DisplayTitle(); got != "Real Title" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Real Title")
	}
}

func TestFilterAudioOnly(t *testing.T) {
	formats := []Format{
		{ID: "251", Extension: "webm", AudioOnly: true},
		{ID: "137", Extension: "mp4", Resolution: "1920x1080", VideoOnly: true},
		{ID: "140", Extension: "m4a", AudioOnly: true},
	}

	all := FilterAudioOnly(formats, false)
	if len(all) != 3 {
		t.Fatalf("FilterAudioOnly(off) len = %d, want 3", len(all))
	}

	audio := FilterAudioOnly(formats, true)
	if len(audio) != 2 || audio[0].ID != "251" || audio[1].ID != "140" {
		t.Errorf("FilterAudioOnly(on) = %+v, want 251 and 140 in order", audio)
	}

	if len(formats) != 3 || formats[1].ID != "137" {
		t.Error("FilterAudioOnly modified its input")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		ok    bool
	}{
		{"42", 42 * time.Second, true},
		{"03:25", 3*time.Minute + 25*time.Second, true},
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second, true},
		{"", 0, false},
		{"NA", 0, false},
		{"1::2", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseClock(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseClock(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(5 * time.Second); got != "00:05" {
		t.Errorf("FormatClock(5s) = %q, want %q", got, "00:05")
	}
	if got := FormatClock(time.Hour + 61*time.Second); got != "01:01:01" {
		t.Errorf("FormatClock(1h1m1s) = %q, want %q", got, "01:01:01")
	}
}

func TestRate_String(t *testing.T) {
	tests := []struct {
		rate Rate
		want string
	}{
		{0, ""},
		{512, "512.00B/s"},
		{Rate(1.2 * 1024 * 1024), "1.20MiB/s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.rate.String(); got != tt.want {
				t.Errorf("Rate(%v).String() = %q, want %q", float64(tt.rate), got, tt.want)
			}
		})
	}
}

func TestPlaylistPreview_TotalDuration(t *testing.T) {
	p := &PlaylistPreview{Entries: []PlaylistEntry{
		{Duration: "1:00"},
		{Duration: "NA"},
		{Duration: "30"},
	}}

	got, ok := p.TotalDuration()
	if !ok || got != 90*time.Second {
		t.Errorf("TotalDuration() = %v, %v, want 1m30s, true", got, ok)
	}

	empty := &PlaylistPreview{Entries: []PlaylistEntry{{Duration: ""}}}
	if _, ok := empty.TotalDuration(); ok {
		t.Error("TotalDuration() ok = true for entries without durations")
	}
}

func TestPlaylistFormat_Extension(t *testing.T) {
	tests := []struct {
		format PlaylistFormat
		want   string
	}{
		{PlaylistFormatM3U, ".m3u"},
		{PlaylistFormatPLS, ".pls"},
		{PlaylistFormatWPL, ".wpl"},
		{PlaylistFormatZPL, ".zpl"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.format.Extension(); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	if got := ParsePlaylistFormat("PLS"); got != PlaylistFormatPLS {
		t.Errorf("ParsePlaylistFormat(PLS) = %v, want PLS", got)
	}
	if got := ParsePlaylistFormat("bogus"); got != PlaylistFormatM3U {
		t.Errorf("ParsePlaylistFormat(bogus) = %v, want M3U", got)
	}
}

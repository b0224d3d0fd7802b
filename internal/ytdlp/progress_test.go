package ytdlp

import (
	"math"
	"testing"
	"time"

	"github.com/handiism/gorlock/internal/model"
)

func TestParse_Progress(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		percent float64
		speed   model.Rate
		eta     time.Duration
		total   int64
	}{
		{
			name:    "bare progress line",
			line:    "  43.0% of 10.00MiB at 1.20MiB/s ETA 00:05",
			percent: 43.0,
			speed:   model.Rate(1.2 * 1024 * 1024),
			eta:     5 * time.Second,
			total:   10 * 1024 * 1024,
		},
		{
			name:    "download prefix",
			line:    "[download]  12.5% of  3.00GiB at  500.00KiB/s ETA 1:02:03",
			percent: 12.5,
			speed:   500 * 1024,
			eta:     time.Hour + 2*time.Minute + 3*time.Second,
			total:   3 * 1024 * 1024 * 1024,
		},
		{
			name:    "estimated total",
			line:    "[download]   5.0% of ~  20.00MiB at    2.00MiB/s ETA 00:09 (frag 1/20)",
			percent: 5.0,
			speed:   2 * 1024 * 1024,
			eta:     9 * time.Second,
			total:   20 * 1024 * 1024,
		},
		{
			name:    "unknown speed and eta",
			line:    "[download]   0.0% of 10.00MiB at Unknown B/s ETA Unknown",
			percent: 0,
			eta:     model.UnknownETA,
			total:   10 * 1024 * 1024,
		},
		{
			name:    "percent only",
			line:    "[download]  99.9%",
			percent: 99.9,
			eta:     model.UnknownETA,
		},
		{
			name:    "completion line",
			line:    "[download] 100% of   10.00MiB in 00:00:05 at 2.00MiB/s",
			percent: 100,
			speed:   2 * 1024 * 1024,
			eta:     0,
			total:   10 * 1024 * 1024,
		},
		{
			name:    "thousands separator",
			line:    "[download]  50.0% of 1,024.00KiB at 1,536.00KiB/s ETA 00:01",
			percent: 50,
			speed:   1536 * 1024,
			eta:     time.Second,
			total:   1024 * 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Parse(tt.line)
			if !ok {
				t.Fatalf("Parse(%q) returned no event", tt.line)
			}
			if ev.Kind != EventProgress {
				t.Fatalf("Kind = %v, want progress", ev.Kind)
			}
			p := ev.Progress
			if math.Abs(p.Percent-tt.percent) > 1e-9 {
				t.Errorf("Percent = %v, want %v", p.Percent, tt.percent)
			}
			if math.Abs(float64(p.Speed-tt.speed)) > 1e-6 {
				t.Errorf("Speed = %v, want %v", float64(p.Speed), float64(tt.speed))
			}
			if p.ETA != tt.eta {
				t.Errorf("ETA = %v, want %v", p.ETA, tt.eta)
			}
			if p.TotalBytes != tt.total {
				t.Errorf("TotalBytes = %d, want %d", p.TotalBytes, tt.total)
			}
		})
	}
}

func TestParse_Events(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		kind  EventKind
		path  string
		stage string
		msg   string
	}{
		{
			name: "destination",
			line: "[download] Destination: /tmp/My Video.f137.mp4",
			kind: EventDestination,
			path: "/tmp/My Video.f137.mp4",
		},
		{
			name:  "merger",
			line:  `[Merger] Merging formats into "/tmp/My Video.mp4"`,
			kind:  EventDestination,
			path:  "/tmp/My Video.mp4",
			stage: "Merger",
		},
		{
			name:  "extract audio",
			line:  "[ExtractAudio] Destination: /tmp/Song.mp3",
			kind:  EventDestination,
			path:  "/tmp/Song.mp3",
			stage: "ExtractAudio",
		},
		{
			name: "already downloaded",
			line: "[download] /tmp/Song.mp3 has already been downloaded",
			kind: EventDestination,
			path: "/tmp/Song.mp3",
		},
		{
			name:  "fixup stage",
			line:  `[FixupM3u8] Fixing MPEG-TS in MP4 container of "/tmp/x.mp4"`,
			kind:  EventStage,
			stage: "FixupM3u8",
		},
		{
			name: "error",
			line: "ERROR: [youtube] abc123: Video unavailable",
			kind: EventError,
			msg:  "[youtube] abc123: Video unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Parse(tt.line)
			if !ok {
				t.Fatalf("Parse(%q) returned no event", tt.line)
			}
			if ev.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", ev.Kind, tt.kind)
			}
			if ev.Path != tt.path {
				t.Errorf("Path = %q, want %q", ev.Path, tt.path)
			}
			if ev.Stage != tt.stage {
				t.Errorf("Stage = %q, want %q", ev.Stage, tt.stage)
			}
			if ev.Message != tt.msg {
				t.Errorf("Message = %q, want %q", ev.Message, tt.msg)
			}
		})
	}
}

func TestParse_Noise(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"[youtube] Extracting URL: https://www.youtube.com/watch?v=abc123",
		"[youtube] abc123: Downloading webpage",
		"[info] abc123: Downloading 1 format(s): 137+140",
		"[download] Downloading item 3 of 10",
		"WARNING: something odd",
		"Deleting original file /tmp/x.f137.mp4 (pass -k to keep)",
		"%%%",
		"[download] abc% of nothing",
		"\x00\xff garbage",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			if ev, ok := Parse(line); ok {
				t.Errorf("Parse(%q) = %+v, want no event", line, ev)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"10.00MiB", 10 * 1024 * 1024, true},
		{"1.5KiB", 1536, true},
		{"~2.00GiB", 2 * 1024 * 1024 * 1024, true},
		{"≈1MB", 1000000, true},
		{"512B", 512, true},
		{"1,024KiB", 1024 * 1024, true},
		{"49k", 0, false},
		{"Unknown", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSize(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseSize(%q) = %d, %v, want %d, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/My Video.mp4", "My Video"},
		{"/tmp/My Video.f137.mp4", "My Video"},
		{"/tmp/Song.mp3", "Song"},
		{"/tmp/Mr.family.webm", "Mr.family"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := TitleFromPath(tt.path); got != tt.want {
				t.Errorf("TitleFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

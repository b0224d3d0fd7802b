package ytdlp

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/handiism/gorlock/internal/model"
)

// EventKind classifies a parsed output line.
type EventKind int

const (
	// EventProgress carries percentage, speed and ETA.
	EventProgress EventKind = iota + 1

	// EventDestination carries the path the tool is writing to.
	EventDestination

	// EventStage reports a post-processing step.
	EventStage

	// EventError carries an ERROR: message.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventDestination:
		return "destination"
	case EventStage:
		return "stage"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is the structured form of one line of yt-dlp output.
//
// Only the fields relevant to Kind are set, except that post-processor
// destination lines set both Path and Stage.
type Event struct {
	Kind     EventKind
	Progress model.Progress
	Path     string
	Stage    string
	Message  string
}

var (
	progressRe = regexp.MustCompile(`^(?:\[download\]\s+)?(\d[\d,]*(?:\.\d+)?)%` +
		`(?:\s+of\s+(?:~|≈)?\s*(\S+))?` +
		`(?:\s+in\s+(\S+))?` +
		`(?:\s+at\s+(\S+))?` +
		`(?:\s+ETA\s+(\S+))?`)

	destinationRe = regexp.MustCompile(`^\[(\w+)\].*?Destination:\s+(.+)$`)
	mergingRe     = regexp.MustCompile(`^\[(\w+)\] Merging formats into "(.+)"$`)
	alreadyRe     = regexp.MustCompile(`^\[download\] (.+) has already been downloaded`)
	stageRe       = regexp.MustCompile(`^\[(Merger|ExtractAudio|FixupM3u8|FixupM4a|FixupStretched|VideoConvertor|VideoRemuxer|EmbedThumbnail|ThumbnailsConvertor|Metadata|MoveFiles)\]`)
	sizeRe        = regexp.MustCompile(`^(\d[\d,]*(?:\.\d+)?)\s*([KMGT]?i?B)$`)
	formatSuffix  = regexp.MustCompile(`\.f\d+(?:-[a-z0-9]+)?$`)
)

// Parse classifies one line of yt-dlp output.
//
// Parse never fails: lines that match no known shape yield ok == false.
// A progress line whose speed or ETA cannot be read still yields an event,
// with Speed zero and ETA model.UnknownETA.
//
// Example:
//
//	ev, ok := Parse("[download]  43.0% of 10.00MiB at 1.20MiB/s ETA 00:05")
//	// ev.Kind == EventProgress, ev.Progress.Percent == 43.0, ev.Progress.ETA == 5*time.Second
func Parse(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}

	if msg, ok := strings.CutPrefix(line, "ERROR:"); ok {
		return Event{Kind: EventError, Message: strings.TrimSpace(msg)}, true
	}

	if m := progressRe.FindStringSubmatch(line); m != nil {
		return parseProgress(m)
	}

	if m := mergingRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: EventDestination, Path: m[2], Stage: m[1]}, true
	}

	if m := destinationRe.FindStringSubmatch(line); m != nil {
		ev := Event{Kind: EventDestination, Path: strings.Trim(m[2], `"`)}
		if m[1] != "download" {
			ev.Stage = m[1]
		}
		return ev, true
	}

	if m := alreadyRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: EventDestination, Path: m[1]}, true
	}

	if m := stageRe.FindStringSubmatch(line); m != nil {
		return Event{Kind: EventStage, Stage: m[1]}, true
	}

	return Event{}, false
}

func parseProgress(m []string) (Event, bool) {
	percent, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return Event{}, false
	}
	percent = min(max(percent, 0), 100)

	p := model.Progress{Percent: percent, ETA: model.UnknownETA}

	if total, ok := ParseSize(m[2]); ok {
		p.TotalBytes = total
	}
	if rate, ok := ParseRate(m[4]); ok {
		p.Speed = rate
	}
	if eta, ok := model.ParseClock(m[5]); ok {
		p.ETA = eta
	} else if m[3] != "" && percent >= 100 {
		p.ETA = 0
	}

	return Event{Kind: EventProgress, Progress: p}, true
}

var sizeUnits = map[string]float64{
	"B":   1,
	"KiB": 1 << 10,
	"MiB": 1 << 20,
	"GiB": 1 << 30,
	"TiB": 1 << 40,
	"KB":  1e3,
	"MB":  1e6,
	"GB":  1e9,
	"TB":  1e12,
}

// ParseSize parses sizes like "10.00MiB", "1,024KiB" or "~3.5GB" into bytes.
func ParseSize(s string) (int64, bool) {
	s = strings.TrimLeft(strings.TrimSpace(s), "~≈")
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	unit, ok := sizeUnits[m[2]]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return int64(v * unit), true
}

// ParseRate parses rates like "1.20MiB/s" into bytes per second.
// "Unknown" and other unreadable values yield ok == false.
func ParseRate(s string) (model.Rate, bool) {
	s, ok := strings.CutSuffix(strings.TrimSpace(s), "/s")
	if !ok {
		return 0, false
	}
	s = strings.TrimLeft(s, "~≈")
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return model.Rate(v * sizeUnits[m[2]]), true
}

// TitleFromPath derives a display title from a destination path,
// dropping the extension and any intermediate ".fNNN" format suffix.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return formatSuffix.ReplaceAllString(name, "")
}

package ytdlp

import (
	"context"
	"strings"

	"github.com/handiism/gorlock/internal/process"
)

// DefaultBinary is the executable looked up on PATH when none is configured.
const DefaultBinary = "yt-dlp"

// Outputter runs a bounded command and captures its output.
// *process.Runner implements it.
type Outputter interface {
	Output(ctx context.Context, name string, args ...string) (*process.Result, error)
}

func binOrDefault(bin string) string {
	if strings.TrimSpace(bin) == "" {
		return DefaultBinary
	}
	return bin
}

// lastErrorLine returns the last "ERROR:" message in stderr, or its last
// non-empty line when there is none.
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if msg, ok := strings.CutPrefix(strings.TrimSpace(lines[i]), "ERROR:"); ok {
			return strings.TrimSpace(msg)
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// field normalizes a --print field, mapping yt-dlp's "NA" placeholder to "".
func field(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}

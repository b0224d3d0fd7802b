package ytdlp

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/handiism/gorlock/internal/model"
)

// CatalogErrorKind distinguishes catalog failures.
type CatalogErrorKind int

const (
	// CatalogProcessFailed means yt-dlp exited with a nonzero code.
	CatalogProcessFailed CatalogErrorKind = iota

	// CatalogNoFormats means yt-dlp succeeded but no row could be parsed.
	CatalogNoFormats
)

// CatalogError reports that the format listing produced no usable result.
type CatalogError struct {
	Kind     CatalogErrorKind
	URL      string
	ExitCode int
	Stderr   string
}

func (e *CatalogError) Error() string {
	switch e.Kind {
	case CatalogNoFormats:
		return fmt.Sprintf("no formats found for %s", e.URL)
	default:
		if msg := lastErrorLine(e.Stderr); msg != "" {
			return fmt.Sprintf("listing formats failed (exit %d): %s", e.ExitCode, msg)
		}
		return fmt.Sprintf("listing formats failed (exit %d)", e.ExitCode)
	}
}

// Catalog lists the formats available for a URL.
//
// Example:
//
//	catalog := ytdlp.NewCatalog(process.NewRunner(0), "yt-dlp")
//	formats, err := catalog.Fetch(ctx, "https://www.youtube.com/watch?v=abc123")
//	// formats[0] is yt-dlp's preferred format
type Catalog struct {
	runner Outputter
	bin    string
}

// NewCatalog creates a Catalog that runs bin through runner.
func NewCatalog(runner Outputter, bin string) *Catalog {
	return &Catalog{runner: runner, bin: binOrDefault(bin)}
}

// Fetch runs the format listing for url and parses its table.
//
// Spawn failures are returned unchanged (*process.SpawnError); listing
// failures are returned as *CatalogError.
func (c *Catalog) Fetch(ctx context.Context, url string) ([]model.Format, error) {
	res, err := c.runner.Output(ctx, c.bin, "--list-formats", "--no-warnings", "--no-playlist", url)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &CatalogError{
			Kind:     CatalogProcessFailed,
			URL:      url,
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(res.Stderr),
		}
	}

	formats := ParseFormats(res.Stdout)
	if len(formats) == 0 {
		return nil, &CatalogError{Kind: CatalogNoFormats, URL: url}
	}
	return formats, nil
}

var (
	formatIDRe   = regexp.MustCompile(`^[A-Za-z0-9_\-+]+$`)
	extensionRe  = regexp.MustCompile(`^[a-z0-9]+$`)
	resolutionRe = regexp.MustCompile(`^\d+x\d+$`)
)

// ParseFormats parses the table printed by --list-formats.
//
// Rows that do not match the column layout are skipped. yt-dlp prints the
// table worst first; the result is reversed so the preferred format comes first.
func ParseFormats(output string) []model.Format {
	var formats []model.Format
	for _, line := range strings.Split(output, "\n") {
		if f, ok := parseFormatRow(line); ok {
			formats = append(formats, f)
		}
	}
	slices.Reverse(formats)
	return formats
}

func parseFormatRow(line string) (model.Format, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "─") || strings.HasPrefix(line, "-") {
		return model.Format{}, false
	}

	fields := strings.Fields(strings.ReplaceAll(line, "│", " "))
	if len(fields) < 2 {
		return model.Format{}, false
	}
	if fields[0] == "ID" && fields[1] == "EXT" {
		return model.Format{}, false
	}
	if !formatIDRe.MatchString(fields[0]) || !extensionRe.MatchString(fields[1]) {
		return model.Format{}, false
	}
	if fields[1] == "mhtml" || strings.Contains(line, "storyboard") {
		return model.Format{}, false
	}

	f := model.Format{
		ID:        fields[0],
		Extension: fields[1],
		VideoOnly: strings.Contains(line, "video only"),
	}

	rest := fields[2:]
	audioOnlyRow := len(rest) >= 2 && rest[0] == "audio" && rest[1] == "only"
	if !strings.Contains(line, "│") && !audioOnlyRow && (len(rest) == 0 || !resolutionRe.MatchString(rest[0])) {
		return model.Format{}, false
	}
	if !audioOnlyRow && len(rest) > 0 && resolutionRe.MatchString(rest[0]) {
		f.Resolution = rest[0]
	}

	for i, field := range rest {
		if field == "~" || field == "≈" {
			if i+1 < len(rest) {
				if size, ok := ParseSize(rest[i+1]); ok {
					f.FileSize = size
					break
				}
			}
			continue
		}
		if size, ok := ParseSize(field); ok {
			f.FileSize = size
			break
		}
	}

	f.AudioOnly = audioOnlyRow || (f.Resolution == "" && !f.VideoOnly) || model.IsAudioContainer(f.Extension)
	return f, true
}

// Selector returns the -f argument for formatID. Video-only formats are
// merged with the best available audio stream.
func Selector(formatID string, formats []model.Format) string {
	for _, f := range formats {
		if f.ID == formatID && f.VideoOnly {
			return formatID + "+bestaudio/" + formatID
		}
	}
	return formatID
}

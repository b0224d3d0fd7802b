package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned by ValidateURL for input that is not an http(s) URL.
var ErrInvalidURL = errors.New("not a valid http(s) URL")

// ValidateURL checks that raw is an absolute http or https URL with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// Metadata is the display information of a single video.
type Metadata struct {
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Uploader  string `json:"uploader"`
}

const metadataTemplate = "%(title)s\t%(duration_string)s\t%(thumbnail)s\t%(uploader)s"

// MetadataFetcher reads video metadata without downloading.
type MetadataFetcher struct {
	runner Outputter
	bin    string
}

// NewMetadataFetcher creates a MetadataFetcher that runs bin through runner.
func NewMetadataFetcher(runner Outputter, bin string) *MetadataFetcher {
	return &MetadataFetcher{runner: runner, bin: binOrDefault(bin)}
}

// Fetch returns the metadata of a single video URL.
func (m *MetadataFetcher) Fetch(ctx context.Context, rawURL string) (*Metadata, error) {
	res, err := m.runner.Output(ctx, m.bin, "--skip-download", "--no-warnings", "--no-playlist", "--print", metadataTemplate, rawURL)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		msg := lastErrorLine(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", res.ExitCode)
		}
		return nil, fmt.Errorf("fetching metadata for %s: %s", rawURL, msg)
	}

	md, ok := ParseMetadata(res.Stdout)
	if !ok {
		return nil, fmt.Errorf("fetching metadata for %s: empty output", rawURL)
	}
	return md, nil
}

// ParseMetadata parses the first non-empty line of the metadata --print output.
func ParseMetadata(output string) (*Metadata, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		for len(parts) < 4 {
			parts = append(parts, "")
		}
		return &Metadata{
			Title:     field(parts[0]),
			Duration:  field(parts[1]),
			Thumbnail: field(parts[2]),
			Uploader:  field(parts[3]),
		}, true
	}
	return nil, false
}

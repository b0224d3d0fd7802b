package ytdlp

import (
	"path/filepath"

	"github.com/handiism/gorlock/internal/model"
)

// DefaultOutputTemplate names downloaded files after the video title.
const DefaultOutputTemplate = "%(title)s.%(ext)s"

// DownloadOptions controls the download command line.
type DownloadOptions struct {
	// Dir is the directory files are written to.
	Dir string

	// Template is the yt-dlp output template relative to Dir.
	Template string

	// MergeFormat is the container used when video and audio are merged.
	MergeFormat string

	// ExtractAudio converts audio-only selections to mp3.
	ExtractAudio bool
}

// DownloadArgs builds the arguments for downloading url in formatID.
//
// formats is the job's catalog and decides whether best audio is merged in
// and whether audio extraction applies. An ID not found in formats, such as
// "best", is passed through as is.
//
// Example:
//
//	args := DownloadArgs(url, "137", formats, DownloadOptions{Dir: "/tmp", MergeFormat: "mp4"})
//	// --newline --progress --no-playlist -f 137+bestaudio/137 -o /tmp/%(title)s.%(ext)s --merge-output-format mp4 URL
func DownloadArgs(url, formatID string, formats []model.Format, opts DownloadOptions) []string {
	template := opts.Template
	if template == "" {
		template = DefaultOutputTemplate
	}

	args := []string{
		"--newline",
		"--progress",
		"--no-playlist",
		"-f", Selector(formatID, formats),
		"-o", filepath.Join(opts.Dir, template),
	}

	audioOnly := false
	for _, f := range formats {
		if f.ID == formatID {
			audioOnly = f.AudioOnly
			break
		}
	}

	if opts.ExtractAudio && audioOnly {
		args = append(args, "-x", "--audio-format", "mp3")
	} else if opts.MergeFormat != "" {
		args = append(args, "--merge-output-format", opts.MergeFormat)
	}

	return append(args, url)
}

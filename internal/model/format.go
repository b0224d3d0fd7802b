package model

import (
	"strings"
)

// Format is one selectable encoding option reported by the format catalog.
//
// Example:
//
//	f := Format{ID: "137", Extension: "mp4", Resolution: "1920x1080", VideoOnly: true}
//	f.DisplayName() // "137  Video 1920x1080 • mp4 • (+audio)"
type Format struct {
	// ID is the opaque token passed back to the tool to select this format.
	ID string

	// Extension is the container extension, e.g. "mp4" or "m4a".
	Extension string

	// Resolution is "WIDTHxHEIGHT" for video formats, empty otherwise.
	Resolution string

	// AudioOnly is true for formats without a video stream.
	AudioOnly bool

	// VideoOnly is true for formats without an audio stream; downloads merge best audio.
	VideoOnly bool

	// FileSize is the exact or approximate size in bytes, zero if unknown.
	FileSize int64
}

var audioContainers = map[string]bool{
	"m4a":  true,
	"mp3":  true,
	"wav":  true,
	"flac": true,
	"opus": true,
	"ogg":  true,
	"aac":  true,
}

// IsAudioContainer reports whether ext is an audio-only container.
func IsAudioContainer(ext string) bool {
	return audioContainers[strings.ToLower(ext)]
}

// DisplayName returns a one-line description for format pickers.
func (f Format) DisplayName() string {
	var parts []string
	switch {
	case f.AudioOnly:
		parts = append(parts, "Audio only")
	case f.Resolution != "":
		parts = append(parts, "Video "+f.Resolution)
	default:
		parts = append(parts, "Video")
	}
	parts = append(parts, f.Extension)
	if f.FileSize > 0 {
		parts = append(parts, FormatBytes(f.FileSize))
	}
	if f.VideoOnly {
		parts = append(parts, "(+audio)")
	}
	return f.ID + "  " + strings.Join(parts, " • ")
}

// FilterAudioOnly returns the audio-only subset of formats when audioOnly is set,
// and formats itself otherwise. The input slice is never modified.
func FilterAudioOnly(formats []Format, audioOnly bool) []Format {
	if !audioOnly {
		return formats
	}
	filtered := make([]Format, 0, len(formats))
	for _, f := range formats {
		if f.AudioOnly {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

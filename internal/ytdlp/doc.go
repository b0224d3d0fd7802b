// Package ytdlp binds the yt-dlp command line: it builds invocations and
// parses the text yt-dlp prints.
//
// # Progress
//
// Parse turns one line of download output into an Event:
//
//	ev, ok := ytdlp.Parse("[download]  43.0% of 10.00MiB at 1.20MiB/s ETA 00:05")
//
// Progress, destination, post-processing stage and ERROR lines are
// recognised. Everything else yields ok == false.
//
// # Formats
//
// Catalog runs --list-formats and parses its table, preferred format first.
//
// # Playlists
//
// IsPlaylistCandidate is a cheap URL check. Resolver runs --flat-playlist and
// returns the entries in order.
//
// # Metadata
//
// MetadataFetcher reads title, duration, thumbnail and uploader of one video.
package ytdlp

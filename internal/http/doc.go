// Package http provides the HTTP client used to fetch video thumbnails.
//
// Thumbnails feed two consumers: the ASCII preview in the terminal UI and the
// cover art embedded into tagged mp3 files.
//
//	client := http.NewClient()
//	data, err := client.DownloadBytes(ctx, "https://i.ytimg.com/vi/abc123/hqdefault.jpg")
//
// Non-200 responses are reported as *StatusError.
package http

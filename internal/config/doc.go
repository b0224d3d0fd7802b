// Package config provides configuration management for gorlock.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to yt-dlp download options and durations for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Downloads/gorlock
//	// Metadata cache enabled for 24 hours
//	// ID3 tagging of mp3 downloads enabled
//
// # Loading from File
//
//	path, _ := config.DefaultPath()
//	settings, err := config.Load(path)
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.DownloadsPath = "/srv/media"
//	err := settings.Save(path)
//
// # Configuration Options
//
// Settings includes options for:
//   - The yt-dlp executable, output template and merge container
//   - Cancellation grace period and metadata timeout
//   - Background fetch concurrency
//   - The metadata cache
//   - ID3 tags and cover art
//   - Thumbnail previews
//   - Playlist export
package config

// Package audio provides post-processing of finished downloads: ID3 tag
// writing for mp3 files and playlist generation.
//
// # ID3 Tagging
//
// The PostProcessor runs after a job completes. For mp3 outputs (yt-dlp's
// audio extraction) it writes tags and embeds the video thumbnail as cover:
//
//	pp := audio.NewPostProcessor(settings, http.NewClient(), ioutils.NewImageService())
//	err := pp.Process(ctx, job)
//
// The underlying Tagger can be used on its own:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(job, jpegBytes)
//
// The tagger supports:
//   - Title
//   - Artist and Album (from the uploader)
//   - Comments (the source URL)
//   - Cover Art (embedded in MP3)
//
// # Playlist Generation
//
// Completed jobs can be exported as a playlist:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	path, err := creator.Export(ctx, settings.DownloadsPath, snap.Jobs)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio

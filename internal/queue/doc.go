// Package queue provides the download queue: job lifecycle, background format
// and playlist fetches, and the single active yt-dlp download.
//
// # Manager
//
// The Manager owns every job. One goroutine applies commands, process output
// and background results in order; callers only ever see immutable snapshots:
//
//	m := queue.NewManager(settings, func(event queue.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	defer m.Shutdown(context.Background())
//
//	id, err := m.Submit("https://www.youtube.com/watch?v=abc123")
//	err = m.FetchFormats(id)
//	// ... later, once the job is AwaitingFormatChoice
//	err = m.SelectFormat(id, "137")
//
//	snap := m.Snapshot()
//	for _, job := range snap.Jobs {
//	    fmt.Println(job.DisplayTitle(), job.State, job.Progress.Percent)
//	}
//
// # Playlists
//
// Playlist URLs are resolved in the background and show up as previews in
// the snapshot. ConfirmPlaylist turns a preview into Queued jobs, in order;
// CancelPlaylist discards it.
//
// # Single Active Download
//
// At most one job is Downloading. SelectFormat while another download runs
// marks the job Held; held jobs start in request order as the slot frees.
// Deleting the active job cancels its process first, and the next held job
// starts only after that process has exited.
//
// # Progress Tracking
//
// Notices are reported via a callback function that receives ProgressEvent
// and the most recent ones are kept in the snapshot:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    JobID   string
//	    Time    time.Time
//	}
package queue

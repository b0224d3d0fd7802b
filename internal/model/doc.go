// Package model defines the core data structures shared by the queue, the
// yt-dlp bindings and the terminal UI.
//
// # Job
//
// Job is one requested download and its lifecycle state:
//
//	job := model.NewJob(id, "https://www.youtube.com/watch?v=abc123")
//	job.State.CanTransition(model.StateFetchingFormats) // true
//
// States move forward only:
//
//	Queued -> FetchingFormats -> AwaitingFormatChoice -> Downloading -> Completed
//
// Failed is reachable from any non-terminal state.
//
// # Format
//
// Format describes one selectable encoding. FilterAudioOnly is a pure view over
// a catalog and never mutates it.
//
// # PlaylistPreview
//
// PlaylistPreview holds resolved playlist entries until the user confirms or
// cancels them.
package model

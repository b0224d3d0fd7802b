// Package process runs external commands and streams their output line by line.
//
// # Streaming
//
// Run starts a command and returns immediately with a Stream:
//
//	runner := process.NewRunner(3 * time.Second)
//	stream, err := runner.Run(ctx, "yt-dlp", "--newline", url)
//	if err != nil {
//	    var spawnErr *process.SpawnError
//	    if errors.As(err, &spawnErr) { ... } // binary missing or not executable
//	}
//	for line := range stream.Lines() {
//	    switch line.Kind {
//	    case process.Stdout, process.Stderr:
//	        handle(line.Text)
//	    case process.Exited:
//	        finish(line.Code)
//	    }
//	}
//
// # Cancellation
//
// Stream.Cancel sends SIGTERM, escalates to SIGKILL after the grace period and
// returns once the stream stops delivering output. The stream then ends with a
// single Exited line carrying ExitCancelled.
//
// # Bounded commands
//
// Output runs a command to completion and captures stdout and stderr. It is
// used for listing modes that exit quickly.
package process

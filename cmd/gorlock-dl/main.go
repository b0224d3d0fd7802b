package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/gorlock/internal/audio"
	"github.com/handiism/gorlock/internal/config"
	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/queue"
)

const pollInterval = 200 * time.Millisecond

func main() {
	var (
		configFlag   = flag.String("config", "", "Path to config file")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		formatFlag   = flag.String("f", "best", "Format ID or yt-dlp selector used for every download")
		ytdlpFlag    = flag.String("yt-dlp", "", "Path to the yt-dlp binary (overrides config)")
		playlistFlag = flag.Bool("playlist", false, "Create playlist file")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("gorlock-dl - Download videos and audio with yt-dlp")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  gorlock-dl [options] <URL>...")
		fmt.Println()
		fmt.Println("For interactive mode, use: gorlock")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *ytdlpFlag != "" {
		settings.YtDlpPath = *ytdlpFlag
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := queue.NewManager(settings, func(event queue.ProgressEvent) {
		if event.Level == queue.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case queue.LevelError:
			prefix = "✗ "
		case queue.LevelWarning:
			prefix = "! "
		case queue.LevelSuccess:
			prefix = "✓ "
		case queue.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("⬇ gorlock")
	fmt.Println(strings.Repeat("━", 40))
	fmt.Println()

	for _, url := range flag.Args() {
		if _, err := manager.Submit(url); err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", url, err)
		}
	}

	snap, err := drive(ctx, manager, *formatFlag)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := manager.Shutdown(shutdownCtx); serr != nil {
		fmt.Fprintf(os.Stderr, "Error stopping downloads: %v\n", serr)
	}

	if err != nil {
		fmt.Println("\nDownload cancelled.")
		os.Exit(130)
	}

	completed := snap.Count(model.StateCompleted)
	failed := snap.Count(model.StateFailed)

	if settings.CreatePlaylist && completed > 0 {
		creator := audio.NewPlaylistCreator(settings.ToPlaylistFormat(), settings.M3UExtended)
		path, err := creator.Export(context.Background(), settings.DownloadsPath, snap.Jobs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing playlist: %v\n", err)
		} else {
			fmt.Printf("Playlist written to %s\n", path)
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("━", 40))
	fmt.Printf("Complete! %d/%d downloads succeeded\n", completed, len(snap.Jobs))
	for _, job := range snap.Jobs {
		if job.State == model.StateFailed {
			fmt.Printf("  ✗ %s: %s\n", job.DisplayTitle(), job.Reason)
		}
	}
	if failed > 0 || len(snap.Jobs) == 0 {
		os.Exit(1)
	}
}

// drive confirms every playlist preview and starts every queued job with
// format until all jobs are finished.
func drive(ctx context.Context, manager *queue.Manager, format string) (*queue.Snapshot, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	started := make(map[string]bool)
	for {
		snap := manager.Snapshot()

		for _, p := range snap.Previews {
			if _, err := manager.ConfirmPlaylist(p.ID); err != nil {
				return snap, err
			}
		}

		pending := len(snap.Resolving) + len(snap.Previews)
		for _, job := range snap.Jobs {
			if job.State.IsTerminal() {
				continue
			}
			pending++
			if started[job.ID] || job.State != model.StateQueued {
				continue
			}
			if err := manager.SelectFormat(job.ID, format); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot start %s: %v\n", job.DisplayTitle(), err)
				continue
			}
			started[job.ID] = true
		}

		if pending == 0 {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return manager.Snapshot(), ctx.Err()
		case <-ticker.C:
		}
	}
}

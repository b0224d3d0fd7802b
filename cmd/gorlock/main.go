package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/gorlock/internal/config"
	"github.com/handiism/gorlock/internal/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file")
		outputFlag = flag.String("o", "", "Downloads directory (overrides config)")
		ytdlpFlag  = flag.String("yt-dlp", "", "Path to the yt-dlp binary (overrides config)")
		logFlag    = flag.String("log", "", "Write diagnostic logs to this file")
	)
	flag.Parse()

	settings, err := loadSettings(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *ytdlpFlag != "" {
		settings.YtDlpPath = *ytdlpFlag
	}
	if *logFlag != "" {
		settings.LogFile = *logFlag
	}

	// the alternate screen owns the terminal, so logs go to a file or nowhere
	if settings.LogFile != "" {
		f, err := tea.LogToFile(settings.LogFile, "gorlock")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.DefaultSettings(), nil
		}
	}
	return config.Load(path)
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/ytdlp"
)

// FileName is the name of the settings file inside the config directory.
const FileName = "config.json"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath     string `json:"downloads_path"`
	YtDlpPath         string `json:"yt_dlp_path"`
	OutputTemplate    string `json:"output_template"`
	MergeOutputFormat string `json:"merge_output_format"`
	ExtractAudioMP3   bool   `json:"extract_audio_mp3"`

	// Process settings (seconds)
	CancelGracePeriod float64 `json:"cancel_grace_period"`
	MetadataTimeout   float64 `json:"metadata_timeout"`

	// Background fetches
	MaxConcurrentFetches int  `json:"max_concurrent_fetches"`
	FetchMetadata        bool `json:"fetch_metadata"`

	// Metadata cache
	CacheEnabled  bool    `json:"cache_enabled"`
	CachePath     string  `json:"cache_path"`
	CacheTTLHours float64 `json:"cache_ttl_hours"`

	// Tag settings
	ModifyTags           bool `json:"modify_tags"`
	EmbedThumbnailInTags bool `json:"embed_thumbnail_in_tags"`
	CoverArtMaxSize      int  `json:"cover_art_max_size"`

	// Thumbnail download retries
	DownloadMaxRetries    int     `json:"download_max_retries"`
	DownloadRetryCooldown float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent float64 `json:"download_retry_exponent"`

	// Thumbnail preview in the details panel
	ThumbnailPreview bool `json:"thumbnail_preview"`
	ThumbnailWidth   int  `json:"thumbnail_width"`
	ThumbnailHeight  int  `json:"thumbnail_height"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// LogFile receives diagnostic logs; empty discards them.
	LogFile string `json:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = filepath.Join(homeDir, ".cache")
	}

	return &Settings{
		DownloadsPath:     filepath.Join(homeDir, "Downloads", "gorlock"),
		YtDlpPath:         ytdlp.DefaultBinary,
		OutputTemplate:    ytdlp.DefaultOutputTemplate,
		MergeOutputFormat: "mp4",
		ExtractAudioMP3:   true,

		CancelGracePeriod: 3,
		MetadataTimeout:   30,

		MaxConcurrentFetches: 8,
		FetchMetadata:        true,

		CacheEnabled:  true,
		CachePath:     filepath.Join(cacheDir, "gorlock", "metadata.json"),
		CacheTTLHours: 24,

		ModifyTags:           true,
		EmbedThumbnailInTags: true,
		CoverArtMaxSize:      1000,

		DownloadMaxRetries:    3,
		DownloadRetryCooldown: 0.2,
		DownloadRetryExponent: 4.0,

		ThumbnailPreview: true,
		ThumbnailWidth:   40,
		ThumbnailHeight:  12,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// DefaultPath returns the settings file location under the user config
// directory, e.g. ~/.config/gorlock/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gorlock", FileName), nil
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToDownloadOptions converts settings to the download command options.
func (s *Settings) ToDownloadOptions() ytdlp.DownloadOptions {
	return ytdlp.DownloadOptions{
		Dir:          s.DownloadsPath,
		Template:     s.OutputTemplate,
		MergeFormat:  s.MergeOutputFormat,
		ExtractAudio: s.ExtractAudioMP3,
	}
}

// Binary returns the yt-dlp executable to run.
func (s *Settings) Binary() string {
	if s.YtDlpPath == "" {
		return ytdlp.DefaultBinary
	}
	return s.YtDlpPath
}

// GracePeriod returns how long a cancelled download may take to exit.
func (s *Settings) GracePeriod() time.Duration {
	return seconds(s.CancelGracePeriod)
}

// MetadataTimeoutDuration bounds a single metadata call; zero means no limit.
func (s *Settings) MetadataTimeoutDuration() time.Duration {
	return seconds(s.MetadataTimeout)
}

// CacheTTL returns how long cached tool output stays valid.
func (s *Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLHours * float64(time.Hour))
}

// RetryCooldown returns the delay before retry number tries (starting at 0).
func (s *Settings) RetryCooldown(tries int) time.Duration {
	cooldown := s.DownloadRetryCooldown
	for range tries {
		cooldown *= s.DownloadRetryExponent
	}
	return seconds(cooldown)
}

// ToPlaylistFormat converts the playlist_format value.
func (s *Settings) ToPlaylistFormat() model.PlaylistFormat {
	return model.ParsePlaylistFormat(s.PlaylistFormat)
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

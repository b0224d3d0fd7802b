package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ioutils "github.com/handiism/gorlock/internal/io"
	"github.com/handiism/gorlock/internal/model"
)

// DefaultPlaylistName is the base name of exported playlist files.
const DefaultPlaylistName = "gorlock"

// PlaylistCreator generates playlist files for completed downloads.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
//
// Only Completed jobs with a known output file are listed, in queue order.
// Paths are written relative to the playlist directory when the file lives
// inside it, and absolute otherwise.
//
// Example:
//
//	// Create M3U playlist with extended info
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist("gorlock", "/downloads", snap.Jobs)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:212,Uploader - Video Title
//	// Video Title.mp4
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the playlist format written by the creator.
func (p *PlaylistCreator) Format() model.PlaylistFormat {
	return p.format
}

type playlistItem struct {
	path     string
	title    string
	artist   string
	duration time.Duration // zero when unknown
}

func (i playlistItem) label() string {
	if i.artist == "" {
		return i.title
	}
	return i.artist + " - " + i.title
}

func (p *PlaylistCreator) items(dir string, jobs []model.Job) []playlistItem {
	var items []playlistItem
	for _, job := range jobs {
		if job.State != model.StateCompleted || job.OutputPath == "" {
			continue
		}
		d, _ := model.ParseClock(job.Duration)
		items = append(items, playlistItem{
			path:     relativePath(dir, job.OutputPath),
			title:    job.DisplayTitle(),
			artist:   job.Uploader,
			duration: d,
		})
	}
	return items
}

func relativePath(dir, path string) string {
	if dir == "" {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// CreatePlaylist generates playlist content for the completed jobs.
//
// title names the playlist in the XML formats; dir is where the playlist file
// will be written.
func (p *PlaylistCreator) CreatePlaylist(title, dir string, jobs []model.Job) string {
	items := p.items(dir, jobs)
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(items)
	case model.PlaylistFormatWPL:
		return p.createWPL(title, items)
	case model.PlaylistFormatZPL:
		return p.createZPL(title, items)
	default:
		return p.createM3U(items)
	}
}

// Export writes the playlist of the completed jobs to dir and returns the
// file path. It fails when no job is exportable.
func (p *PlaylistCreator) Export(ctx context.Context, dir string, jobs []model.Job) (string, error) {
	if len(p.items(dir, jobs)) == 0 {
		return "", fmt.Errorf("no completed downloads to export")
	}
	if err := ioutils.EnsureDir(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, DefaultPlaylistName+p.format.Extension())
	content := p.CreatePlaylist(DefaultPlaylistName, dir, jobs)
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:180,Uploader - Title
//	filename1.mp3
//
// Unknown durations are written as -1.
func (p *PlaylistCreator) createM3U(items []playlistItem) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, item := range items {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", seconds(item.duration), item.label())
		}
		sb.WriteString(item.path + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(items []playlistItem) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, item := range items {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, item.path)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, item.label())
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, seconds(item.duration))
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(items))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(title string, items []playlistItem) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, item := range items {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(item.path))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL is WPL plus per-item title, artist and duration attributes.
func (p *PlaylistCreator) createZPL(title string, items []playlistItem) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("    <meta name=\"Generator\" content=\"gorlock\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(items))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, item := range items {
		fmt.Fprintf(&sb, "      <media src=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(item.path),
			escapeXML(item.title),
			escapeXML(item.artist),
			item.duration.Milliseconds())
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return -1
	}
	return int(d.Seconds())
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/gorlock/internal/model"
	"github.com/handiism/gorlock/internal/queue"
	"github.com/handiism/gorlock/internal/ytdlp"
)

const (
	maxNotices     = 6
	maxPopupRows   = 12
	minTitleColumn = 20
)

func columns(width int) []table.Column {
	title := max(width-6-22-8-6, minTitleColumn)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Title", Width: title},
		{Title: "Status", Width: 22},
		{Title: "Progress", Width: 8},
	}
}

func rows(snap *queue.Snapshot) []table.Row {
	out := make([]table.Row, len(snap.Jobs))
	for i, job := range snap.Jobs {
		out[i] = table.Row{
			strconv.Itoa(i + 1),
			job.DisplayTitle(),
			statusText(job),
			progressText(job),
		}
	}
	return out
}

func statusText(job model.Job) string {
	s := job.State.String()
	switch {
	case job.Held:
		s += " (waiting)"
	case job.State == model.StateDownloading && job.Stage != "":
		s += " (" + job.Stage + ")"
	case job.State == model.StateQueued && job.Message != "":
		s += " (error)"
	}
	return s
}

func progressText(job model.Job) string {
	switch job.State {
	case model.StateDownloading:
		return fmt.Sprintf("%.1f%%", job.Progress.Percent)
	case model.StateCompleted:
		return "100%"
	default:
		return ""
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return "\n  " + m.spinner.View() + " " + m.status + "\n"
	}

	var body string
	switch {
	case m.errMsg != "":
		body = m.renderError()
	case m.mode == modeFormats:
		body = m.renderFormats()
	case m.mode == modePlaylist:
		body = m.renderPlaylist()
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			panelStyle.Render(m.table.View()),
			m.renderDetails(),
		)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.mode == modeInput {
		b.WriteString(m.renderInput())
		b.WriteString("\n")
	}
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderNotices())
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys.help(m.mode)))
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("⬇ gorlock")
	sub := subtitleStyle.Render("  yt-dlp download queue")
	return "\n" + title + sub + "\n"
}

func (m Model) renderInput() string {
	style := panelStyle
	if v := strings.TrimSpace(m.input.Value()); v != "" {
		if ytdlp.ValidateURL(v) == nil {
			style = style.BorderForeground(lipgloss.Color("#95E1A3"))
		} else {
			style = style.BorderForeground(lipgloss.Color("#FF6B6B"))
		}
	}
	return style.Render(m.input.View())
}

func (m Model) renderDetails() string {
	job, ok := m.selected()
	if !ok {
		return panelStyle.Render(dimStyle.Render("Queue is empty. Press i to add a URL."))
	}

	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, labelStyle.Render(label+": ")+value)
		}
	}

	add("Title", job.DisplayTitle())
	add("URL", job.URL)
	add("Duration", job.Duration)
	add("Uploader", job.Uploader)
	if job.SelectedFormat != "" {
		name := job.SelectedFormat
		if f, ok := job.FindFormat(job.SelectedFormat); ok {
			name = f.DisplayName()
		}
		add("Format", name)
	}
	add("Status", stateStyle(job.State).Render(statusText(job)))
	if job.Reason != "" {
		add("Error", errorStyle.Render(job.Reason))
	}
	if job.Message != "" {
		add("Message", warningStyle.Render(job.Message))
	}
	add("Output", job.OutputPath)

	if job.State == model.StateDownloading {
		lines = append(lines, "", m.progress.ViewAs(job.Progress.Percent/100))
		var stats []string
		if s := job.Progress.Speed.String(); s != "" {
			stats = append(stats, s)
		}
		stats = append(stats, "ETA "+job.Progress.ETAString())
		if job.Progress.TotalBytes > 0 {
			stats = append(stats, model.FormatBytes(job.Progress.TotalBytes))
		}
		lines = append(lines, dimStyle.Render(strings.Join(stats, " • ")))
	}

	details := strings.Join(lines, "\n")
	if art := m.art[job.Thumbnail]; art != "" {
		details = lipgloss.JoinHorizontal(lipgloss.Top, thumbStyle.Render(art), "  ", details)
	}
	return panelStyle.Render(details)
}

func (m Model) renderFormats() string {
	job, ok := m.snap.Job(m.formatJob)
	if !ok {
		return ""
	}
	formats := m.snap.Formats(job)

	heading := "Select Format (All)"
	if m.snap.AudioOnly {
		heading = "Select Format (Audio Only)"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(job.DisplayTitle()))
	b.WriteString("\n\n")

	if len(formats) == 0 {
		b.WriteString(warningStyle.Render("No matching formats. Press t to show all formats."))
		return popupStyle.Render(b.String())
	}

	start, end := window(m.formatCursor, len(formats), maxPopupRows)
	for i := start; i < end; i++ {
		line := formats[i].DisplayName()
		if i == m.formatCursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d", m.formatCursor+1, len(formats))))
	return popupStyle.Render(b.String())
}

func (m Model) renderPlaylist() string {
	if len(m.snap.Previews) == 0 {
		return ""
	}
	preview := m.snap.Previews[0]

	var b strings.Builder
	b.WriteString(titleStyle.Render("Playlist"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(preview.SourceURL))
	b.WriteString("\n")

	summary := fmt.Sprintf("%d videos", len(preview.Entries))
	if total, ok := preview.TotalDuration(); ok {
		summary += " • " + model.FormatTotalDuration(total)
	}
	b.WriteString(infoStyle.Render(summary))
	b.WriteString("\n\n")

	start, end := window(m.playlistCursor, len(preview.Entries), maxPopupRows)
	for i := start; i < end; i++ {
		e := preview.Entries[i]
		title := e.Title
		if title == "" {
			title = e.URL
		}
		line := fmt.Sprintf("%d. %s", i+1, title)
		if e.Duration != "" {
			line += dimStyle.Render(" (" + e.Duration + ")")
		}
		if i == m.playlistCursor {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.snap.Previews) > 1 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d more playlists waiting", len(m.snap.Previews)-1)))
	}
	return popupStyle.Render(b.String())
}

func (m Model) renderError() string {
	return errorBoxStyle.Render(
		errorStyle.Render("✗ Error") + "\n\n" + m.errMsg + "\n\n" + dimStyle.Render("Press any key to close"),
	)
}

func (m Model) renderNotices() string {
	var notices []queue.ProgressEvent
	for _, n := range m.snap.Notices {
		if n.Level == queue.LevelVerbose && !m.verbose {
			continue
		}
		notices = append(notices, n)
	}
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}

	var b strings.Builder
	for _, n := range notices {
		style, prefix := levelStyle(n.Level)
		b.WriteString(style.Render(fmt.Sprintf("%s %s", prefix, n.Message)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string
	if m.snap.Busy() {
		parts = append(parts, m.spinner.View())
	}
	parts = append(parts, fmt.Sprintf("%d items", len(m.snap.Jobs)))
	if n := m.snap.Count(model.StateCompleted); n > 0 {
		parts = append(parts, successStyle.Render(fmt.Sprintf("%d done", n)))
	}
	if n := m.snap.Count(model.StateFailed); n > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d failed", n)))
	}
	if m.snap.AudioOnly {
		parts = append(parts, infoStyle.Render("audio only"))
	}
	if m.verbose {
		parts = append(parts, dimStyle.Render("verbose"))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, dimStyle.Render(" | "))
}

// window returns the visible [start, end) range of n rows keeping cursor in view.
func window(cursor, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := max(cursor-size/2, 0)
	end := start + size
	if end > n {
		end = n
		start = n - size
	}
	return start, end
}

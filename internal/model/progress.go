package model

import (
	"fmt"
	"strings"
	"time"
)

// UnknownETA marks a Progress whose ETA was not reported.
const UnknownETA time.Duration = -1

// Rate is a transfer rate in bytes per second. Zero means unknown.
type Rate float64

var rateUnits = []string{"B/s", "KiB/s", "MiB/s", "GiB/s", "TiB/s"}

// String formats the rate with binary units, e.g. "1.20MiB/s".
func (r Rate) String() string {
	if r <= 0 {
		return ""
	}
	v := float64(r)
	i := 0
	for v >= 1024 && i < len(rateUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f%s", v, rateUnits[i])
}

// Progress is the last known state of a running download.
type Progress struct {
	// Percent is in the range 0-100.
	Percent float64

	// Speed is the current rate, zero if unknown.
	Speed Rate

	// ETA is the estimated remaining time, UnknownETA if not reported.
	ETA time.Duration

	// TotalBytes is the expected size of the current file, zero if unknown.
	TotalBytes int64
}

// HasETA reports whether the ETA was reported.
func (p Progress) HasETA() bool {
	return p.ETA >= 0
}

// ETAString returns the ETA formatted as mm:ss or hh:mm:ss, or "—" if unknown.
func (p Progress) ETAString() string {
	if !p.HasETA() {
		return "—"
	}
	return FormatClock(p.ETA)
}

// FormatClock formats d as mm:ss, or hh:mm:ss when at least an hour.
func FormatClock(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ParseClock parses "ss", "mm:ss" or "hh:mm:ss" into a duration.
func ParseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var total int
	for _, part := range parts {
		if part == "" {
			return 0, false
		}
		n := 0
		for _, c := range part {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, true
}

// FormatBytes renders a byte count as "12.3MB" style text.
func FormatBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f%s", size, units[i])
}

// FormatTotalDuration renders d as "1h 2m 3s", "2m 3s" or "3s".
func FormatTotalDuration(d time.Duration) string {
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

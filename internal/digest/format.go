package digest

import "fmt"

// FormatDuration renders a duration in seconds for display: "5 min" under an
// hour, "1h 30m" above, empty for unknown durations.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

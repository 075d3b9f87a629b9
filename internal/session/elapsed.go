package session

import (
	"fmt"
	"time"
)

// FormatElapsed renders the time since startMs as MM:SS, switching to
// HH:MM:SS once a full hour has passed. Negative differences clamp to zero
// so a slightly-ahead start timestamp never shows garbage.
func FormatElapsed(startMs int64, now time.Time) string {
	diffMs := now.UnixMilli() - startMs
	total := diffMs / 1000
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

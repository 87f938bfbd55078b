package model

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders a message timestamp the way the chat
// surface displays it: "Just now" under a minute, coarse buckets up to
// a day, then a local clock time.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	default:
		return t.Format("3:04 PM")
	}
}

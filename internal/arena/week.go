package arena

import (
	"fmt"
	"time"
)

// Leaderboard keys roll over on ISO week boundaries and stick around for
// two weeks after the week ends.
const retentionAfterWeek = 14 * 24 * time.Hour

// WeekKey returns the ISO week identifier for t, e.g. "2026-W35".
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// weekEnd returns the first instant after t's ISO week (Monday 00:00 UTC).
func weekEnd(t time.Time) time.Time {
	t = t.UTC()
	daysIntoWeek := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -daysIntoWeek)
	return monday.AddDate(0, 0, 7)
}

// retentionTTL returns how long the current week's key should live from
// now: until the week ends plus the retention window.
func retentionTTL(now time.Time) time.Duration {
	return weekEnd(now).Sub(now.UTC()) + retentionAfterWeek
}

// Package progress implements the activity and achievement engine:
// writing-streak computation over activity records and threshold-based
// badge evaluation against a stats snapshot. Both are pure computations;
// persistence stays with the caller.
package progress

import (
	"sort"
	"time"

	"github.com/inkwellhq/inkwell-web/internal/models"
)

// DateLayout is the wire/storage form of an activity date. All streak
// math happens on UTC calendar days: stored dates parse to UTC midnight
// and the clock is truncated the same way, so a session logged at 23:59
// and one at 00:01 land on the days their dates say they do.
const DateLayout = "2006-01-02"

// StreakCalculator computes the current consecutive-day writing streak.
// The clock is injectable so tests can pin "today".
type StreakCalculator struct {
	now func() time.Time
}

// NewStreakCalculator creates a calculator using the wall clock.
func NewStreakCalculator() *StreakCalculator {
	return &StreakCalculator{now: time.Now}
}

// NewStreakCalculatorAt creates a calculator with a fixed clock
func NewStreakCalculatorAt(now func() time.Time) *StreakCalculator {
	return &StreakCalculator{now: now}
}

// Streak returns the number of consecutive calendar days, ending today or
// yesterday, with at least one activity. Multiple records on the same day
// collapse to a single active day. A most recent activity older than
// yesterday means the streak is broken, no matter how long it once was.
func (c *StreakCalculator) Streak(activities []models.WritingActivity) int {
	days := distinctDays(activities)
	if len(days) == 0 {
		return 0
	}

	// Descending, most recent first
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := DayOf(c.now())
	yesterday := today.AddDate(0, 0, -1)

	mostRecent := days[0]
	if mostRecent.Before(yesterday) {
		return 0
	}

	streak := 1
	cursor := mostRecent
	for _, day := range days[1:] {
		expected := cursor.AddDate(0, 0, -1)
		switch {
		case day.Equal(expected):
			streak++
			cursor = day
		case day.Equal(cursor):
			// Duplicate day; cannot occur after the collapse above, but a
			// stray one must not end the walk
		default:
			// Gap of more than one day ends the streak
			return streak
		}
	}

	return streak
}

// ActiveDays returns the number of distinct calendar days with activity,
// the metric behind consistent_writer achievements.
func ActiveDays(activities []models.WritingActivity) int {
	return len(distinctDays(activities))
}

// DayOf truncates a point in time to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// distinctDays collapses activity records to their set of distinct
// activity dates. Records whose date does not parse are dropped; creation
// already rejects malformed dates at the boundary.
func distinctDays(activities []models.WritingActivity) []time.Time {
	seen := make(map[string]struct{}, len(activities))
	days := make([]time.Time, 0, len(activities))
	for _, activity := range activities {
		if _, ok := seen[activity.ActivityDate]; ok {
			continue
		}
		day, err := time.ParseInLocation(DateLayout, activity.ActivityDate, time.UTC)
		if err != nil {
			continue
		}
		seen[activity.ActivityDate] = struct{}{}
		days = append(days, day)
	}
	return days
}

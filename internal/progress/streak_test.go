package progress_test

import (
	"testing"
	"time"

	"github.com/inkwellhq/inkwell-web/internal/models"
	"github.com/inkwellhq/inkwell-web/internal/progress"
)

// fixedToday pins the calculator's clock to 2025-06-15 mid-afternoon UTC.
var fixedToday = time.Date(2025, 6, 15, 15, 30, 0, 0, time.UTC)

func calculator() *progress.StreakCalculator {
	return progress.NewStreakCalculatorAt(func() time.Time { return fixedToday })
}

func activityOn(date string) models.WritingActivity {
	return models.WritingActivity{UserID: 1, WordCount: 250, ActivityDate: date}
}

func TestStreak_NoActivity(t *testing.T) {
	if got := calculator().Streak(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %d", got)
	}
}

func TestStreak_SingleDayToday(t *testing.T) {
	activities := []models.WritingActivity{activityOn("2025-06-15")}
	if got := calculator().Streak(activities); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestStreak_EndsYesterdayStillAlive(t *testing.T) {
	activities := []models.WritingActivity{
		activityOn("2025-06-14"),
		activityOn("2025-06-13"),
		activityOn("2025-06-12"),
	}
	if got := calculator().Streak(activities); got != 3 {
		t.Errorf("expected 3 for streak ending yesterday, got %d", got)
	}
}

func TestStreak_BrokenByGap(t *testing.T) {
	// Today and yesterday are consecutive; the day before that is missing
	activities := []models.WritingActivity{
		activityOn("2025-06-15"),
		activityOn("2025-06-14"),
		activityOn("2025-06-12"),
	}
	if got := calculator().Streak(activities); got != 2 {
		t.Errorf("expected 2 (gap at 06-13), got %d", got)
	}
}

func TestStreak_DuplicateSameDayRecords(t *testing.T) {
	// Two sessions on the same day must not inflate the count
	chapterA, chapterB := 10, 11
	activities := []models.WritingActivity{
		{UserID: 1, ChapterID: &chapterA, WordCount: 500, ActivityDate: "2025-06-15"},
		{UserID: 1, ChapterID: &chapterB, WordCount: 120, ActivityDate: "2025-06-15"},
	}
	if got := calculator().Streak(activities); got != 1 {
		t.Errorf("expected 1 despite duplicate records, got %d", got)
	}
}

func TestStreak_DuplicatesInsideLongerStreak(t *testing.T) {
	activities := []models.WritingActivity{
		activityOn("2025-06-15"),
		activityOn("2025-06-14"),
		activityOn("2025-06-14"),
		activityOn("2025-06-13"),
	}
	if got := calculator().Streak(activities); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestStreak_StaleByTwoDays(t *testing.T) {
	// A long run that last saw activity two days ago is worth nothing
	activities := []models.WritingActivity{
		activityOn("2025-06-13"),
		activityOn("2025-06-12"),
		activityOn("2025-06-11"),
		activityOn("2025-06-10"),
		activityOn("2025-06-09"),
	}
	if got := calculator().Streak(activities); got != 0 {
		t.Errorf("expected 0 for stale streak, got %d", got)
	}
}

func TestStreak_UnorderedInput(t *testing.T) {
	activities := []models.WritingActivity{
		activityOn("2025-06-13"),
		activityOn("2025-06-15"),
		activityOn("2025-06-14"),
	}
	if got := calculator().Streak(activities); got != 3 {
		t.Errorf("expected 3 regardless of input order, got %d", got)
	}
}

func TestStreak_MalformedDateIgnored(t *testing.T) {
	activities := []models.WritingActivity{
		activityOn("2025-06-15"),
		activityOn("not-a-date"),
		activityOn("2025-06-14"),
	}
	if got := calculator().Streak(activities); got != 2 {
		t.Errorf("expected 2 with malformed record dropped, got %d", got)
	}
}

func TestActiveDays(t *testing.T) {
	activities := []models.WritingActivity{
		activityOn("2025-06-15"),
		activityOn("2025-06-15"),
		activityOn("2025-06-10"),
		activityOn("2025-06-01"),
	}
	if got := progress.ActiveDays(activities); got != 3 {
		t.Errorf("expected 3 distinct active days, got %d", got)
	}
}

func TestDayOf_NormalizesToUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC; the streak engine
	// counts the UTC day
	loc := time.FixedZone("UTC-5", -5*3600)
	local := time.Date(2025, 6, 14, 23, 30, 0, 0, loc)
	if got := progress.DayOf(local); got.Format(progress.DateLayout) != "2025-06-15" {
		t.Errorf("expected 2025-06-15, got %s", got.Format(progress.DateLayout))
	}
}

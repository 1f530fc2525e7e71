package progress

import (
	"github.com/inkwellhq/inkwell-web/internal/models"
)

// Stats is an immutable snapshot of a user's aggregate writing metrics,
// assembled by the caller from book roll-ups, the streak calculator and
// the activity log.
type Stats struct {
	TotalWords     int `json:"total_words"`
	TotalChapters  int `json:"total_chapters"`
	TotalBooks     int `json:"total_books"`
	CompletedBooks int `json:"completed_books"`
	Streak         int `json:"streak"`
	ActiveDays     int `json:"active_days"`
}

// Evaluate returns the catalog entries the user newly qualifies for, in
// catalog order. Already-granted achievements are never re-returned, so
// calling twice with an up-to-date granted set yields an empty second
// result. Evaluation itself has no side effects; persisting the grants
// is the caller's job.
func Evaluate(stats Stats, catalog []models.Achievement, granted map[int]bool) []models.Achievement {
	newly := []models.Achievement{}
	for _, achievement := range catalog {
		if granted[achievement.ID] {
			continue
		}
		if Qualifies(stats, achievement) {
			newly = append(newly, achievement)
		}
	}
	return newly
}

// Qualifies reports whether the stats snapshot meets an achievement's
// threshold. Thresholds are inclusive: hitting the value exactly earns
// the badge. An unrecognized type never qualifies, so new catalog types
// degrade gracefully on older code paths.
func Qualifies(stats Stats, achievement models.Achievement) bool {
	switch achievement.Type {
	case models.AchievementWordCount:
		return stats.TotalWords >= achievement.Threshold
	case models.AchievementStreak:
		return stats.Streak >= achievement.Threshold
	case models.AchievementChapterCompletion:
		return stats.TotalChapters >= achievement.Threshold
	case models.AchievementBookCompletion:
		return stats.CompletedBooks >= achievement.Threshold
	case models.AchievementFirstBook:
		return stats.TotalBooks >= achievement.Threshold
	case models.AchievementConsistentWriter:
		return stats.ActiveDays >= achievement.Threshold
	default:
		return false
	}
}

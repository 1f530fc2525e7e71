package models

import (
	"time"
)

// Achievement types. An achievement's threshold is compared against the
// metric its type names; unrecognized types never qualify.
const (
	AchievementWordCount         = "word_count"
	AchievementStreak            = "streak"
	AchievementChapterCompletion = "chapter_completion"
	AchievementBookCompletion    = "book_completion"
	AchievementFirstBook         = "first_book"
	AchievementConsistentWriter  = "consistent_writer"
)

// WritingActivity is one recorded writing session. Several activities may
// share the same activity_date; they count as a single active day.
type WritingActivity struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	BookID       *int      `json:"book_id" db:"book_id"`
	ChapterID    *int      `json:"chapter_id" db:"chapter_id"`
	WordCount    int       `json:"word_count" db:"word_count"`
	ActivityDate string    `json:"activity_date" db:"activity_date"` // YYYY-MM-DD, UTC calendar day
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Achievement is a catalog entry, seeded once at startup
type Achievement struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
	Threshold   int       `json:"threshold" db:"threshold"`
	Icon        string    `json:"icon" db:"icon"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UserAchievement records that a user earned an achievement.
// At most one grant exists per (user, achievement) pair.
type UserAchievement struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	AchievementID int       `json:"achievement_id" db:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at" db:"earned_at"`
}

// EarnedAchievement is a grant joined with its catalog definition,
// the shape handlers return to clients
type EarnedAchievement struct {
	UserAchievement
	Achievement Achievement `json:"achievement"`
}

// RecordActivityRequest represents a logged writing session
type RecordActivityRequest struct {
	UserID       int    `json:"user_id" validate:"required"`
	BookID       *int   `json:"book_id"`
	ChapterID    *int   `json:"chapter_id"`
	WordCount    int    `json:"word_count" validate:"min=0"`
	ActivityDate string `json:"activity_date"` // optional, defaults to today (UTC)
}

package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/inkwellhq/inkwell-web/internal/database"
	"github.com/inkwellhq/inkwell-web/internal/models"
	"github.com/inkwellhq/inkwell-web/internal/progress"
)

// ActivityService owns the writing-activity log and achievement grants.
// It feeds snapshots to the progress engine and persists what the engine
// decides; it never caches the already-granted set between checks.
type ActivityService struct {
	db         *database.DB
	books      *BookService
	calculator *progress.StreakCalculator
}

func NewActivityService(db *database.DB, books *BookService) *ActivityService {
	return &ActivityService{
		db:         db,
		books:      books,
		calculator: progress.NewStreakCalculator(),
	}
}

// NewActivityServiceAt pins the service's clock, for tests
func NewActivityServiceAt(db *database.DB, books *BookService, now func() time.Time) *ActivityService {
	return &ActivityService{
		db:         db,
		books:      books,
		calculator: progress.NewStreakCalculatorAt(now),
	}
}

// RecordActivity appends one writing session to the activity log.
// Negative word counts and malformed dates are rejected here, at the
// boundary, so the streak engine can assume clean records.
func (s *ActivityService) RecordActivity(req *models.RecordActivityRequest) (*models.WritingActivity, error) {
	if req.WordCount < 0 {
		return nil, fmt.Errorf("word count cannot be negative")
	}

	activityDate := req.ActivityDate
	if activityDate == "" {
		activityDate = progress.DayOf(time.Now()).Format(progress.DateLayout)
	} else if _, err := time.ParseInLocation(progress.DateLayout, activityDate, time.UTC); err != nil {
		return nil, fmt.Errorf("invalid activity date %q: %w", activityDate, err)
	}

	activity := &models.WritingActivity{
		UserID:       req.UserID,
		BookID:       req.BookID,
		ChapterID:    req.ChapterID,
		WordCount:    req.WordCount,
		ActivityDate: activityDate,
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO writing_activities (user_id, book_id, chapter_id, word_count, activity_date, created_at)
		VALUES (:user_id, :book_id, :chapter_id, :word_count, :activity_date, :created_at)
	`
	result, err := s.db.NamedExec(query, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get activity ID: %w", err)
	}
	activity.ID = int(id)
	return activity, nil
}

// GetActivities returns a user's activities within a date range,
// oldest first. Dates compare lexicographically in YYYY-MM-DD form.
func (s *ActivityService) GetActivities(userID int, startDate, endDate string) ([]models.WritingActivity, error) {
	activities := []models.WritingActivity{}
	query := `
		SELECT * FROM writing_activities
		WHERE user_id = ? AND activity_date >= ? AND activity_date <= ?
		ORDER BY activity_date, id
	`
	if err := s.db.Select(&activities, query, userID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to get writing activities: %w", err)
	}
	return activities, nil
}

// WritingStreak computes the user's current consecutive-day streak
func (s *ActivityService) WritingStreak(userID int) (int, error) {
	activities, err := s.allActivities(userID)
	if err != nil {
		return 0, err
	}
	return s.calculator.Streak(activities), nil
}

// GetAchievements returns the full catalog in insertion order, which is
// also the order newly earned achievements are reported in
func (s *ActivityService) GetAchievements() ([]models.Achievement, error) {
	achievements := []models.Achievement{}
	if err := s.db.Select(&achievements, `SELECT * FROM achievements ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	return achievements, nil
}

// CreateAchievement adds a catalog entry
func (s *ActivityService) CreateAchievement(a *models.Achievement) (*models.Achievement, error) {
	if a.Threshold <= 0 {
		return nil, fmt.Errorf("achievement threshold must be positive")
	}
	a.CreatedAt = time.Now()
	query := `
		INSERT INTO achievements (name, description, type, threshold, icon, created_at)
		VALUES (:name, :description, :type, :threshold, :icon, :created_at)
	`
	result, err := s.db.NamedExec(query, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement ID: %w", err)
	}
	a.ID = int(id)
	return a, nil
}

// GetUserAchievements returns the user's grants joined with their
// catalog definitions
func (s *ActivityService) GetUserAchievements(userID int) ([]models.EarnedAchievement, error) {
	rows := []struct {
		models.UserAchievement
		Name        string    `db:"name"`
		Description string    `db:"description"`
		Type        string    `db:"type"`
		Threshold   int       `db:"threshold"`
		Icon        string    `db:"icon"`
		CreatedAt2  time.Time `db:"achievement_created_at"`
	}{}

	query := `
		SELECT ua.id, ua.user_id, ua.achievement_id, ua.earned_at,
			a.name, a.description, a.type, a.threshold, a.icon,
			a.created_at AS achievement_created_at
		FROM user_achievements ua
		INNER JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = ?
		ORDER BY ua.earned_at, ua.id
	`
	if err := s.db.Select(&rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user achievements: %w", err)
	}

	earned := make([]models.EarnedAchievement, len(rows))
	for i, row := range rows {
		earned[i] = models.EarnedAchievement{
			UserAchievement: row.UserAchievement,
			Achievement: models.Achievement{
				ID:          row.AchievementID,
				Name:        row.Name,
				Description: row.Description,
				Type:        row.Type,
				Threshold:   row.Threshold,
				Icon:        row.Icon,
				CreatedAt:   row.CreatedAt2,
			},
		}
	}
	return earned, nil
}

// UserStats assembles the immutable snapshot the evaluator runs against
func (s *ActivityService) UserStats(userID int) (progress.Stats, error) {
	bookStats, err := s.books.GetBookStats(userID)
	if err != nil {
		return progress.Stats{}, err
	}

	activities, err := s.allActivities(userID)
	if err != nil {
		return progress.Stats{}, err
	}

	return progress.Stats{
		TotalWords:     bookStats.TotalWords,
		TotalChapters:  bookStats.TotalChapters,
		TotalBooks:     bookStats.TotalBooks,
		CompletedBooks: bookStats.CompletedBooks,
		Streak:         s.calculator.Streak(activities),
		ActiveDays:     progress.ActiveDays(activities),
	}, nil
}

// CheckAndAwardAchievements evaluates the catalog against the user's
// current stats and persists a grant for each newly earned achievement.
// The already-granted set is re-read on every call, so retrying after a
// partial failure only grants what is still missing. A grant that loses
// a uniqueness race is skipped; the rest of the catalog is still
// evaluated.
func (s *ActivityService) CheckAndAwardAchievements(userID int) ([]models.EarnedAchievement, error) {
	stats, err := s.UserStats(userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.GetAchievements()
	if err != nil {
		return nil, err
	}

	existing, err := s.GetUserAchievements(userID)
	if err != nil {
		return nil, err
	}
	granted := make(map[int]bool, len(existing))
	for _, e := range existing {
		granted[e.AchievementID] = true
	}

	newlyEarned := []models.EarnedAchievement{}
	for _, achievement := range progress.Evaluate(stats, catalog, granted) {
		grant, created, err := s.addUserAchievement(userID, achievement.ID)
		if err != nil {
			return nil, err
		}
		if !created {
			// A concurrent check already persisted this grant; it is not
			// newly earned from this call's perspective
			continue
		}
		newlyEarned = append(newlyEarned, models.EarnedAchievement{
			UserAchievement: *grant,
			Achievement:     achievement,
		})
	}

	return newlyEarned, nil
}

// SeedDefaultAchievements installs the built-in catalog once. Existing
// entries (matched by name) are left untouched.
func (s *ActivityService) SeedDefaultAchievements() error {
	defaults := []models.Achievement{
		{Name: "First Words", Description: "Write your first 100 words", Type: models.AchievementWordCount, Threshold: 100, Icon: "award"},
		{Name: "Dedicated Writer", Description: "Write at least 1,000 words total", Type: models.AchievementWordCount, Threshold: 1000, Icon: "award"},
		{Name: "Prolific Author", Description: "Write at least 10,000 words total", Type: models.AchievementWordCount, Threshold: 10000, Icon: "award"},
		{Name: "First Streak", Description: "Write for 3 consecutive days", Type: models.AchievementStreak, Threshold: 3, Icon: "calendar-clock"},
		{Name: "Consistent Writer", Description: "Write for 7 consecutive days", Type: models.AchievementStreak, Threshold: 7, Icon: "calendar-clock"},
		{Name: "Writing Machine", Description: "Write for 30 consecutive days", Type: models.AchievementStreak, Threshold: 30, Icon: "calendar-clock"},
		{Name: "First Chapter", Description: "Complete your first chapter", Type: models.AchievementChapterCompletion, Threshold: 1, Icon: "flag"},
		{Name: "Chapter Master", Description: "Complete 10 chapters across all your books", Type: models.AchievementChapterCompletion, Threshold: 10, Icon: "flag"},
		{Name: "First Book", Description: "Create your first book", Type: models.AchievementFirstBook, Threshold: 1, Icon: "star"},
		{Name: "Finished Book", Description: "Complete your first book", Type: models.AchievementBookCompletion, Threshold: 1, Icon: "trophy"},
	}

	for _, achievement := range defaults {
		query := `
			INSERT OR IGNORE INTO achievements (name, description, type, threshold, icon, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		_, err := s.db.Exec(query, achievement.Name, achievement.Description,
			achievement.Type, achievement.Threshold, achievement.Icon, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", achievement.Name, err)
		}
	}
	return nil
}

// allActivities loads a user's full activity history, newest first
func (s *ActivityService) allActivities(userID int) ([]models.WritingActivity, error) {
	activities := []models.WritingActivity{}
	query := `SELECT * FROM writing_activities WHERE user_id = ? ORDER BY activity_date DESC`
	if err := s.db.Select(&activities, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get writing activities: %w", err)
	}
	return activities, nil
}

// addUserAchievement persists one grant with a server-assigned earned_at.
// The created flag is false when the (user, achievement) pair already
// exists: the uniqueness constraint turns a duplicate attempt into a
// detectable no-op instead of an error.
func (s *ActivityService) addUserAchievement(userID, achievementID int) (*models.UserAchievement, bool, error) {
	earnedAt := time.Now()
	result, err := s.db.Exec(`
		INSERT OR IGNORE INTO user_achievements (user_id, achievement_id, earned_at)
		VALUES (?, ?, ?)
	`, userID, achievementID, earnedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add user achievement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check grant insert: %w", err)
	}
	created := rows > 0

	var grant models.UserAchievement
	err = s.db.Get(&grant, `
		SELECT id, user_id, achievement_id, earned_at FROM user_achievements
		WHERE user_id = ? AND achievement_id = ?
	`, userID, achievementID)
	if err == sql.ErrNoRows {
		return nil, false, fmt.Errorf("grant not found after insert")
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to load grant: %w", err)
	}

	return &grant, created, nil
}

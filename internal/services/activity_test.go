package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/inkwellhq/inkwell-web/internal/database"
	"github.com/inkwellhq/inkwell-web/internal/models"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(t *testing.T, db *database.DB) *models.User {
	t.Helper()
	users := NewUserService(db)
	user, err := users.CreateUser(&models.CreateUserRequest{
		Username:    "tester",
		Email:       "tester@example.com",
		Password:    "secret-password",
		DisplayName: "Tester",
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func bookWithWords(t *testing.T, books *BookService, userID, words int) *models.Book {
	t.Helper()
	book, err := books.CreateBook(userID, &models.CreateBookRequest{Title: "Test Book"})
	if err != nil {
		t.Fatalf("failed to create book: %v", err)
	}
	content := ""
	for i := 0; i < words; i++ {
		content += "word "
	}
	if _, err := books.CreateChapter(&models.CreateChapterRequest{
		BookID:  book.ID,
		Title:   "Chapter One",
		Content: content,
	}); err != nil {
		t.Fatalf("failed to create chapter: %v", err)
	}
	return book
}

func TestRecordActivity_RejectsNegativeWordCount(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	activities := NewActivityService(db, NewBookService(db))

	_, err := activities.RecordActivity(&models.RecordActivityRequest{
		UserID:    user.ID,
		WordCount: -50,
	})
	if err == nil {
		t.Fatal("expected error for negative word count, got nil")
	}
}

func TestRecordActivity_DefaultsToToday(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	activities := NewActivityService(db, NewBookService(db))

	activity, err := activities.RecordActivity(&models.RecordActivityRequest{
		UserID:    user.ID,
		WordCount: 250,
	})
	if err != nil {
		t.Fatalf("RecordActivity failed: %v", err)
	}
	if activity.ID == 0 {
		t.Error("expected activity to receive an ID")
	}
	want := time.Now().UTC().Format("2006-01-02")
	if activity.ActivityDate != want {
		t.Errorf("expected activity date %s, got %s", want, activity.ActivityDate)
	}
}

func TestWritingStreak_ConsecutiveDays(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	now := func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	activities := NewActivityServiceAt(db, NewBookService(db), now)

	for _, date := range []string{"2025-06-13", "2025-06-14", "2025-06-15"} {
		if _, err := activities.RecordActivity(&models.RecordActivityRequest{
			UserID:       user.ID,
			WordCount:    300,
			ActivityDate: date,
		}); err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
	}

	streak, err := activities.WritingStreak(user.ID)
	if err != nil {
		t.Fatalf("WritingStreak failed: %v", err)
	}
	if streak != 3 {
		t.Errorf("expected streak 3, got %d", streak)
	}
}

func TestCheckAndAwardAchievements_GrantsOnce(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	books := NewBookService(db)
	activities := NewActivityService(db, books)

	if _, err := activities.CreateAchievement(&models.Achievement{
		Name:      "First Words",
		Type:      models.AchievementWordCount,
		Threshold: 100,
		Icon:      "award",
	}); err != nil {
		t.Fatalf("CreateAchievement failed: %v", err)
	}

	bookWithWords(t, books, user.ID, 150)

	earned, err := activities.CheckAndAwardAchievements(user.ID)
	if err != nil {
		t.Fatalf("CheckAndAwardAchievements failed: %v", err)
	}
	if len(earned) != 1 {
		t.Fatalf("expected 1 newly earned achievement, got %d", len(earned))
	}
	if earned[0].Achievement.Name != "First Words" {
		t.Errorf("expected First Words, got %s", earned[0].Achievement.Name)
	}
	if earned[0].EarnedAt.IsZero() {
		t.Error("expected server-assigned earned_at timestamp")
	}

	// A second pass over unchanged stats grants nothing
	again, err := activities.CheckAndAwardAchievements(user.ID)
	if err != nil {
		t.Fatalf("second CheckAndAwardAchievements failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected no new achievements on second check, got %d", len(again))
	}

	granted, err := activities.GetUserAchievements(user.ID)
	if err != nil {
		t.Fatalf("GetUserAchievements failed: %v", err)
	}
	if len(granted) != 1 {
		t.Errorf("expected exactly 1 persisted grant, got %d", len(granted))
	}
}

func TestCheckAndAwardAchievements_WordsAndStreakScenario(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	books := NewBookService(db)
	now := func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	activities := NewActivityServiceAt(db, books, now)

	if _, err := activities.CreateAchievement(&models.Achievement{
		Name: "First Words", Type: models.AchievementWordCount, Threshold: 100, Icon: "award",
	}); err != nil {
		t.Fatalf("CreateAchievement failed: %v", err)
	}
	if _, err := activities.CreateAchievement(&models.Achievement{
		Name: "First Streak", Type: models.AchievementStreak, Threshold: 3, Icon: "calendar-clock",
	}); err != nil {
		t.Fatalf("CreateAchievement failed: %v", err)
	}

	bookWithWords(t, books, user.ID, 150)
	for _, date := range []string{"2025-06-13", "2025-06-14", "2025-06-15"} {
		if _, err := activities.RecordActivity(&models.RecordActivityRequest{
			UserID:       user.ID,
			WordCount:    50,
			ActivityDate: date,
		}); err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
	}

	earned, err := activities.CheckAndAwardAchievements(user.ID)
	if err != nil {
		t.Fatalf("CheckAndAwardAchievements failed: %v", err)
	}
	if len(earned) != 2 {
		t.Fatalf("expected both achievements earned, got %d", len(earned))
	}
	if earned[0].Achievement.Name != "First Words" || earned[1].Achievement.Name != "First Streak" {
		t.Errorf("expected catalog order [First Words, First Streak], got [%s, %s]",
			earned[0].Achievement.Name, earned[1].Achievement.Name)
	}

	again, err := activities.CheckAndAwardAchievements(user.ID)
	if err != nil {
		t.Fatalf("second CheckAndAwardAchievements failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected empty second pass, got %d", len(again))
	}
}

func TestCheckAndAwardAchievements_CatalogOrder(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	books := NewBookService(db)
	activities := NewActivityService(db, books)

	catalog := []models.Achievement{
		{Name: "First Words", Type: models.AchievementWordCount, Threshold: 100, Icon: "award"},
		{Name: "First Book", Type: models.AchievementFirstBook, Threshold: 1, Icon: "star"},
		{Name: "First Chapter", Type: models.AchievementChapterCompletion, Threshold: 1, Icon: "flag"},
	}
	for i := range catalog {
		if _, err := activities.CreateAchievement(&catalog[i]); err != nil {
			t.Fatalf("CreateAchievement failed: %v", err)
		}
	}

	bookWithWords(t, books, user.ID, 200)

	earned, err := activities.CheckAndAwardAchievements(user.ID)
	if err != nil {
		t.Fatalf("CheckAndAwardAchievements failed: %v", err)
	}
	if len(earned) != 3 {
		t.Fatalf("expected 3 newly earned achievements, got %d", len(earned))
	}
	for i, want := range []string{"First Words", "First Book", "First Chapter"} {
		if earned[i].Achievement.Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, earned[i].Achievement.Name)
		}
	}
}

func TestCheckAndAwardAchievements_SkipsRacingDuplicate(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	books := NewBookService(db)
	activities := NewActivityService(db, books)

	first, err := activities.CreateAchievement(&models.Achievement{
		Name: "First Words", Type: models.AchievementWordCount, Threshold: 100, Icon: "award",
	})
	if err != nil {
		t.Fatalf("CreateAchievement failed: %v", err)
	}
	second, err := activities.CreateAchievement(&models.Achievement{
		Name: "First Book", Type: models.AchievementFirstBook, Threshold: 1, Icon: "star",
	})
	if err != nil {
		t.Fatalf("CreateAchievement failed: %v", err)
	}

	bookWithWords(t, books, user.ID, 200)

	// Simulate a concurrent check that already persisted the first grant
	// between our snapshot read and our insert
	if _, _, err := activities.addUserAchievement(user.ID, first.ID); err != nil {
		t.Fatalf("failed to pre-insert grant: %v", err)
	}

	earned, err := activities.CheckAndAwardAchievements(user.ID)
	if err != nil {
		t.Fatalf("CheckAndAwardAchievements failed: %v", err)
	}
	// The duplicate is skipped, not fatal, and later entries still land
	if len(earned) != 1 {
		t.Fatalf("expected 1 newly earned achievement, got %d", len(earned))
	}
	if earned[0].AchievementID != second.ID {
		t.Errorf("expected achievement %d to be granted, got %d", second.ID, earned[0].AchievementID)
	}

	granted, err := activities.GetUserAchievements(user.ID)
	if err != nil {
		t.Fatalf("GetUserAchievements failed: %v", err)
	}
	if len(granted) != 2 {
		t.Errorf("expected 2 persisted grants total, got %d", len(granted))
	}
}

func TestSeedDefaultAchievements_Idempotent(t *testing.T) {
	db := testDB(t)
	activities := NewActivityService(db, NewBookService(db))

	if err := activities.SeedDefaultAchievements(); err != nil {
		t.Fatalf("SeedDefaultAchievements failed: %v", err)
	}
	first, err := activities.GetAchievements()
	if err != nil {
		t.Fatalf("GetAchievements failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected seeded catalog to be non-empty")
	}

	if err := activities.SeedDefaultAchievements(); err != nil {
		t.Fatalf("second SeedDefaultAchievements failed: %v", err)
	}
	second, err := activities.GetAchievements()
	if err != nil {
		t.Fatalf("GetAchievements failed: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("expected catalog size to stay %d after re-seed, got %d", len(first), len(second))
	}
}

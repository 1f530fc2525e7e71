package progress_test

import (
	"testing"

	"github.com/inkwellhq/inkwell-web/internal/models"
	"github.com/inkwellhq/inkwell-web/internal/progress"
)

func catalog() []models.Achievement {
	return []models.Achievement{
		{ID: 1, Name: "First Words", Type: models.AchievementWordCount, Threshold: 100},
		{ID: 2, Name: "Dedicated Writer", Type: models.AchievementWordCount, Threshold: 1000},
		{ID: 3, Name: "First Streak", Type: models.AchievementStreak, Threshold: 3},
		{ID: 4, Name: "First Chapter", Type: models.AchievementChapterCompletion, Threshold: 1},
		{ID: 5, Name: "First Book", Type: models.AchievementFirstBook, Threshold: 1},
		{ID: 6, Name: "Finished Book", Type: models.AchievementBookCompletion, Threshold: 1},
		{ID: 7, Name: "Regular", Type: models.AchievementConsistentWriter, Threshold: 10},
	}
}

func idsOf(achievements []models.Achievement) []int {
	ids := make([]int, len(achievements))
	for i, a := range achievements {
		ids[i] = a.ID
	}
	return ids
}

func TestEvaluate_ThresholdBoundaryInclusive(t *testing.T) {
	stats := progress.Stats{TotalWords: 1000}
	newly := progress.Evaluate(stats, catalog(), nil)

	got := idsOf(newly)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected exactly [1 2] at the 1000-word boundary, got %v", got)
	}
}

func TestEvaluate_MultiTypeIndependence(t *testing.T) {
	// Plenty of words, nothing else: only word_count badges qualify
	stats := progress.Stats{TotalWords: 5000}
	newly := progress.Evaluate(stats, catalog(), nil)

	for _, a := range newly {
		if a.Type != models.AchievementWordCount {
			t.Errorf("unexpected %s achievement %q with zeroed metrics", a.Type, a.Name)
		}
	}
	if len(newly) != 2 {
		t.Errorf("expected both word_count badges, got %d", len(newly))
	}
}

func TestEvaluate_SkipsAlreadyGranted(t *testing.T) {
	stats := progress.Stats{TotalWords: 5000, Streak: 3}
	granted := map[int]bool{1: true, 3: true}

	newly := progress.Evaluate(stats, catalog(), granted)
	got := idsOf(newly)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected only [2], got %v", got)
	}
}

func TestEvaluate_SecondPassIsEmpty(t *testing.T) {
	stats := progress.Stats{TotalWords: 150, Streak: 3}
	first := progress.Evaluate(stats, catalog(), nil)
	if len(first) == 0 {
		t.Fatal("expected first pass to earn achievements")
	}

	granted := map[int]bool{}
	for _, a := range first {
		granted[a.ID] = true
	}

	second := progress.Evaluate(stats, catalog(), granted)
	if len(second) != 0 {
		t.Errorf("expected empty second pass, got %v", idsOf(second))
	}
}

func TestEvaluate_CatalogOrderPreserved(t *testing.T) {
	stats := progress.Stats{
		TotalWords:     10000,
		TotalChapters:  5,
		TotalBooks:     2,
		CompletedBooks: 1,
		Streak:         4,
		ActiveDays:     30,
	}
	newly := progress.Evaluate(stats, catalog(), nil)

	got := idsOf(newly)
	want := []int{1, 2, 3, 4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected catalog order %v, got %v", want, got)
		}
	}
}

func TestEvaluate_NothingQualifies(t *testing.T) {
	newly := progress.Evaluate(progress.Stats{TotalWords: 99}, catalog(), nil)
	if newly == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if len(newly) != 0 {
		t.Errorf("expected no achievements, got %v", idsOf(newly))
	}
}

func TestQualifies_UnknownTypeNeverQualifies(t *testing.T) {
	exotic := models.Achievement{ID: 99, Name: "Time Traveler", Type: "temporal_anomaly", Threshold: 1}
	stats := progress.Stats{TotalWords: 1 << 20, Streak: 1 << 20, ActiveDays: 1 << 20}

	if progress.Qualifies(stats, exotic) {
		t.Error("unknown achievement type must never qualify")
	}

	newly := progress.Evaluate(stats, []models.Achievement{exotic}, nil)
	if len(newly) != 0 {
		t.Errorf("expected unknown type to be skipped, got %v", idsOf(newly))
	}
}

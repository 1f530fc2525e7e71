package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"

	"github.com/inkwellhq/inkwell-web/internal/auth"
	"github.com/inkwellhq/inkwell-web/internal/database"
	"github.com/inkwellhq/inkwell-web/internal/llm/simulated"
	"github.com/inkwellhq/inkwell-web/internal/models"
	"github.com/inkwellhq/inkwell-web/internal/services"
	"github.com/inkwellhq/inkwell-web/internal/writing"
)

type testEnv struct {
	router *mux.Router
	cookie string
	userID int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	viper.Set("auth.session_secret", "test-secret")
	auth.Init()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := services.NewUserService(db)
	books := services.NewBookService(db)
	activities := services.NewActivityService(db, books)
	if err := activities.SeedDefaultAchievements(); err != nil {
		t.Fatalf("failed to seed achievements: %v", err)
	}

	user, err := users.CreateUser(&models.CreateUserRequest{
		Username:    "writer",
		Email:       "writer@example.com",
		Password:    "secret-password",
		DisplayName: "Writer",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	handler := NewHandler(books, activities, users, writing.NewGenerator(simulated.NewClient()), nil)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware)
	handler.RegisterRoutes(api)

	// Mint a session cookie for the test user
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	session, _ := auth.Store.Get(req, "inkwell-session")
	session.Values["user_id"] = user.ID
	if err := session.Save(req, rec); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	return &testEnv{
		router: router,
		cookie: rec.Header().Get("Set-Cookie"),
		userID: user.ID,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if e.cookie != "" {
		req.Header.Set("Cookie", e.cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createBook(t *testing.T, title string) *models.Book {
	t.Helper()
	rec := e.do(t, "POST", "/api/v1/books", models.CreateBookRequest{Title: title, Genre: "fantasy"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating book, got %d: %s", rec.Code, rec.Body.String())
	}
	var book models.Book
	if err := json.Unmarshal(rec.Body.Bytes(), &book); err != nil {
		t.Fatalf("failed to decode book: %v", err)
	}
	return &book
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	env.cookie = ""

	rec := env.do(t, "GET", "/api/v1/books", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", rec.Code)
	}
}

func TestAPI_CreateBookEarnsFirstBook(t *testing.T) {
	env := newTestEnv(t)

	env.createBook(t, "My First Novel")

	rec := env.do(t, "GET", "/api/v1/user-achievements", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var earned []models.EarnedAchievement
	if err := json.Unmarshal(rec.Body.Bytes(), &earned); err != nil {
		t.Fatalf("failed to decode achievements: %v", err)
	}
	found := false
	for _, e := range earned {
		if e.Achievement.Name == "First Book" {
			found = true
		}
	}
	if !found {
		t.Error("expected First Book achievement after creating a book")
	}
}

func TestAPI_ChapterSaveRecordsActivityAndStreak(t *testing.T) {
	env := newTestEnv(t)
	book := env.createBook(t, "Streak Book")

	rec := env.do(t, "POST", fmt.Sprintf("/api/v1/books/%d/chapters", book.ID),
		models.CreateChapterRequest{Title: "Chapter One"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating chapter, got %d: %s", rec.Code, rec.Body.String())
	}
	var chapter models.Chapter
	if err := json.Unmarshal(rec.Body.Bytes(), &chapter); err != nil {
		t.Fatalf("failed to decode chapter: %v", err)
	}

	content := strings.Repeat("word ", 120)
	rec = env.do(t, "PUT", fmt.Sprintf("/api/v1/chapters/%d", chapter.ID),
		map[string]string{"content": content})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 saving chapter, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, "GET", "/api/v1/writing-streak", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var streak map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &streak); err != nil {
		t.Fatalf("failed to decode streak: %v", err)
	}
	if streak["streak"] != 1 {
		t.Errorf("expected streak 1 after today's save, got %d", streak["streak"])
	}

	rec = env.do(t, "GET", "/api/v1/writing-activities", nil)
	var activities []models.WritingActivity
	if err := json.Unmarshal(rec.Body.Bytes(), &activities); err != nil {
		t.Fatalf("failed to decode activities: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("expected 1 recorded activity, got %d", len(activities))
	}
	if activities[0].WordCount != 120 {
		t.Errorf("expected 120 words recorded, got %d", activities[0].WordCount)
	}
}

func TestAPI_RecordActivityRejectsNegativeWords(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/v1/writing-activities",
		map[string]int{"word_count": -10})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative word count, got %d", rec.Code)
	}
}

func TestAPI_ExportBookAsText(t *testing.T) {
	env := newTestEnv(t)
	book := env.createBook(t, "Export Me")

	rec := env.do(t, "POST", fmt.Sprintf("/api/v1/books/%d/chapters", book.ID),
		models.CreateChapterRequest{Title: "Only Chapter", Content: "Some prose here."})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = env.do(t, "GET", fmt.Sprintf("/api/v1/books/%d/export?format=text", book.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain content type, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "Export Me") {
		t.Error("expected book title in export")
	}
	if !strings.Contains(rec.Body.String(), "Some prose here.") {
		t.Error("expected chapter prose in export")
	}
}

func TestAPI_ForeignBookIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	book := env.createBook(t, "Private Book")

	// A second user must not see the first user's book
	other := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	session, _ := auth.Store.Get(other, "inkwell-session")
	session.Values["user_id"] = env.userID + 1
	session.Save(other, rec)
	env.cookie = rec.Header().Get("Set-Cookie")

	got := env.do(t, "GET", fmt.Sprintf("/api/v1/books/%d", book.ID), nil)
	if got.Code != http.StatusForbidden {
		t.Errorf("expected 403 for foreign book, got %d", got.Code)
	}
}

func TestAPI_GenerateOutlines(t *testing.T) {
	env := newTestEnv(t)
	book := env.createBook(t, "Generated Book")

	rec := env.do(t, "POST", fmt.Sprintf("/api/v1/books/%d/generate-outline", book.ID),
		map[string]int{"number_of_chapters": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Outlines []writing.ChapterOutline `json:"outlines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode outlines: %v", err)
	}
	if len(resp.Outlines) == 0 {
		t.Error("expected at least one generated outline")
	}
}

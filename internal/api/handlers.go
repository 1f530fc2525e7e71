package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/inkwellhq/inkwell-web/internal/auth"
	"github.com/inkwellhq/inkwell-web/internal/export"
	"github.com/inkwellhq/inkwell-web/internal/logger"
	"github.com/inkwellhq/inkwell-web/internal/models"
	"github.com/inkwellhq/inkwell-web/internal/progress"
	"github.com/inkwellhq/inkwell-web/internal/services"
	"github.com/inkwellhq/inkwell-web/internal/websocket"
	"github.com/inkwellhq/inkwell-web/internal/writing"
)

// Notifier pushes achievement grants to connected clients
type Notifier interface {
	NotifyAchievements(userID int, earned []models.EarnedAchievement)
}

type Handler struct {
	books      *services.BookService
	activities *services.ActivityService
	users      *services.UserService
	generator  *writing.Generator
	notifier   Notifier
	logger     *logger.Log
}

func NewHandler(books *services.BookService, activities *services.ActivityService,
	users *services.UserService, generator *writing.Generator, hub *websocket.Hub) *Handler {
	var notifier Notifier
	if hub != nil {
		notifier = hub
	}
	return &Handler{
		books:      books,
		activities: activities,
		users:      users,
		generator:  generator,
		notifier:   notifier,
		logger:     logger.New(),
	}
}

// RegisterRoutes mounts the API under the given (already authenticated)
// subrouter
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/books", h.ListBooks).Methods("GET")
	r.HandleFunc("/books", h.CreateBook).Methods("POST")
	r.HandleFunc("/books/{id}", h.GetBook).Methods("GET")
	r.HandleFunc("/books/{id}", h.UpdateBook).Methods("PUT")
	r.HandleFunc("/books/{id}", h.DeleteBook).Methods("DELETE")
	r.HandleFunc("/books/{id}/chapters", h.ListChapters).Methods("GET")
	r.HandleFunc("/books/{id}/chapters", h.CreateChapter).Methods("POST")
	r.HandleFunc("/books/{id}/export", h.ExportBook).Methods("GET")
	r.HandleFunc("/books/{id}/generate-outline", h.GenerateOutlines).Methods("POST")
	r.HandleFunc("/chapters/{id}", h.GetChapter).Methods("GET")
	r.HandleFunc("/chapters/{id}", h.UpdateChapter).Methods("PUT")
	r.HandleFunc("/chapters/{id}", h.DeleteChapter).Methods("DELETE")
	r.HandleFunc("/chapters/{id}/generate", h.GenerateChapterContent).Methods("POST")
	r.HandleFunc("/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/writing-streak", h.GetWritingStreak).Methods("GET")
	r.HandleFunc("/writing-activities", h.ListActivities).Methods("GET")
	r.HandleFunc("/writing-activities", h.RecordActivity).Methods("POST")
	r.HandleFunc("/achievements", h.ListAchievements).Methods("GET")
	r.HandleFunc("/user-achievements", h.ListUserAchievements).Methods("GET")
	r.HandleFunc("/check-achievements", h.CheckAchievements).Methods("POST")
	r.HandleFunc("/templates", h.ListTemplates).Methods("GET")
}

// GET /api/v1/books
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	books, err := h.books.GetBooks(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list books")
		writeError(w, http.StatusInternalServerError, "failed to list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// POST /api/v1/books
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	var req models.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	book, err := h.books.CreateBook(userID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create book")
		writeError(w, http.StatusInternalServerError, "failed to create book")
		return
	}

	// Creating a first book can itself earn an achievement
	h.checkAchievements(userID, w)

	writeJSON(w, http.StatusCreated, book)
}

// GET /api/v1/books/{id}
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.ownedBook(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// PUT /api/v1/books/{id}
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.ownedBook(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Genre       *string `json:"genre"`
		Outline     *string `json:"outline"`
		Status      *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.books.UpdateBook(book.ID, req.Title, req.Description, req.Genre, req.Outline, req.Status)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update book")
		writeError(w, http.StatusInternalServerError, "failed to update book")
		return
	}

	// Completing a book can earn book_completion achievements
	h.checkAchievements(book.UserID, w)

	writeJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/books/{id}
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.ownedBook(w, r)
	if !ok {
		return
	}

	if err := h.books.DeleteBook(book.ID); err != nil {
		h.logger.WithError(err).Error("Failed to delete book")
		writeError(w, http.StatusInternalServerError, "failed to delete book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/books/{id}/chapters
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	book, ok := h.ownedBook(w, r)
	if !ok {
		return
	}

	chapters, err := h.books.GetChapters(book.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list chapters")
		writeError(w, http.StatusInternalServerError, "failed to list chapters")
		return
	}
	writeJSON(w, http.StatusOK, chapters)
}

// POST /api/v1/books/{id}/chapters
func (h *Handler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	book, ok := h.ownedBook(w, r)
	if !ok {
		return
	}

	var req models.CreateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	req.BookID = book.ID

	chapter, err := h.books.CreateChapter(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create chapter")
		writeError(w, http.StatusInternalServerError, "failed to create chapter")
		return
	}

	if chapter.WordCount > 0 {
		h.recordProgress(book.UserID, book.ID, chapter.ID, chapter.WordCount, w)
	} else {
		h.checkAchievements(book.UserID, w)
	}

	writeJSON(w, http.StatusCreated, chapter)
}

// GET /api/v1/chapters/{id}
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	chapter, _, ok := h.ownedChapter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, chapter)
}

// PUT /api/v1/chapters/{id}
//
// Saving chapter content is the primary write path: the word delta is
// logged as writing activity and achievements are re-checked, but a
// failure in either never fails the save itself.
func (h *Handler) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	chapter, book, ok := h.ownedChapter(w, r)
	if !ok {
		return
	}

	var req models.UpdateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, wordDelta, err := h.books.UpdateChapter(chapter.ID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update chapter")
		writeError(w, http.StatusInternalServerError, "failed to update chapter")
		return
	}

	if wordDelta > 0 {
		h.recordProgress(book.UserID, book.ID, chapter.ID, wordDelta, w)
	} else {
		// Status changes (e.g. marking the chapter completed) still
		// affect achievements
		h.checkAchievements(book.UserID, w)
	}

	writeJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/chapters/{id}
func (h *Handler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	chapter, _, ok := h.ownedChapter(w, r)
	if !ok {
		return
	}

	if err := h.books.DeleteChapter(chapter.ID); err != nil {
		h.logger.WithError(err).Error("Failed to delete chapter")
		writeError(w, http.StatusInternalServerError, "failed to delete chapter")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	stats, err := h.activities.UserStats(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute stats")
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/v1/writing-streak
func (h *Handler) GetWritingStreak(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	streak, err := h.activities.WritingStreak(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute streak")
		writeError(w, http.StatusInternalServerError, "failed to compute streak")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

// GET /api/v1/writing-activities?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	end := r.URL.Query().Get("end")
	if end == "" {
		end = progress.DayOf(time.Now()).Format(progress.DateLayout)
	}
	start := r.URL.Query().Get("start")
	if start == "" {
		start = progress.DayOf(time.Now()).AddDate(0, 0, -30).Format(progress.DateLayout)
	}

	activities, err := h.activities.GetActivities(userID, start, end)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list activities")
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// POST /api/v1/writing-activities
func (h *Handler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	var req models.RecordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID

	activity, err := h.activities.RecordActivity(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.checkAchievements(userID, w)

	writeJSON(w, http.StatusCreated, activity)
}

// GET /api/v1/achievements
func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.activities.GetAchievements()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list achievements")
		writeError(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

// GET /api/v1/user-achievements
func (h *Handler) ListUserAchievements(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	earned, err := h.activities.GetUserAchievements(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list user achievements")
		writeError(w, http.StatusInternalServerError, "failed to list user achievements")
		return
	}
	writeJSON(w, http.StatusOK, earned)
}

// POST /api/v1/check-achievements
//
// Explicit check endpoint; unlike the implicit checks on save, a
// failure here is surfaced to the caller.
func (h *Handler) CheckAchievements(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	earned, err := h.activities.CheckAndAwardAchievements(userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check achievements")
		writeError(w, http.StatusInternalServerError, "failed to check achievements")
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyAchievements(userID, earned)
	}
	writeJSON(w, http.StatusOK, earned)
}

// GET /api/v1/books/{id}/export?format=text|markdown
func (h *Handler) ExportBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.ownedBook(w, r)
	if !ok {
		return
	}

	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatText
	}

	chapters, err := h.books.GetChapters(book.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load chapters for export")
		writeError(w, http.StatusInternalServerError, "failed to export book")
		return
	}

	doc, err := export.Export(book, chapters, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Write(doc.Content)
}

// POST /api/v1/books/{id}/generate-outline
func (h *Handler) GenerateOutlines(w http.ResponseWriter, r *http.Request) {
	book, ok := h.ownedBook(w, r)
	if !ok {
		return
	}

	var req struct {
		NumberOfChapters int `json:"number_of_chapters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outlines, err := h.generator.GenerateOutlines(r.Context(), book, req.NumberOfChapters)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate outlines")
		writeError(w, http.StatusBadGateway, "outline generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"outlines": outlines})
}

// POST /api/v1/chapters/{id}/generate
func (h *Handler) GenerateChapterContent(w http.ResponseWriter, r *http.Request) {
	chapter, book, ok := h.ownedChapter(w, r)
	if !ok {
		return
	}

	outline := chapter.Outline
	var req struct {
		Outline string `json:"outline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Outline != "" {
		outline = req.Outline
	}

	content, err := h.generator.GenerateChapterContent(r.Context(), book, chapter.Title, outline)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate chapter content")
		writeError(w, http.StatusBadGateway, "chapter generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

// GET /api/v1/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, writing.Templates())
}

// recordProgress logs writing activity and re-checks achievements as a
// side effect of a content save. Both are best effort.
func (h *Handler) recordProgress(userID, bookID, chapterID, words int, w http.ResponseWriter) {
	_, err := h.activities.RecordActivity(&models.RecordActivityRequest{
		UserID:    userID,
		BookID:    &bookID,
		ChapterID: &chapterID,
		WordCount: words,
	})
	if err != nil {
		h.logger.WithError(err).Warn("Failed to record writing activity")
	}
	h.checkAchievements(userID, w)
}

// checkAchievements runs the award check without ever failing the
// request that triggered it
func (h *Handler) checkAchievements(userID int, _ http.ResponseWriter) {
	earned, err := h.activities.CheckAndAwardAchievements(userID)
	if err != nil {
		h.logger.WithError(err).Warn("Achievement check failed")
		return
	}
	if h.notifier != nil {
		h.notifier.NotifyAchievements(userID, earned)
	}
}

// ownedBook loads the book in the route and verifies the session user
// owns it
func (h *Handler) ownedBook(w http.ResponseWriter, r *http.Request) (*models.Book, bool) {
	userID, _ := auth.UserID(r)

	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return nil, false
	}

	book, err := h.books.GetBook(bookID)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return nil, false
	}
	if book.UserID != userID {
		writeError(w, http.StatusForbidden, "not your book")
		return nil, false
	}
	return book, true
}

// ownedChapter loads the chapter in the route along with its book and
// verifies ownership
func (h *Handler) ownedChapter(w http.ResponseWriter, r *http.Request) (*models.Chapter, *models.Book, bool) {
	userID, _ := auth.UserID(r)

	chapterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chapter id")
		return nil, nil, false
	}

	chapter, err := h.books.GetChapter(chapterID)
	if err != nil {
		writeError(w, http.StatusNotFound, "chapter not found")
		return nil, nil, false
	}

	book, err := h.books.GetBook(chapter.BookID)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return nil, nil, false
	}
	if book.UserID != userID {
		writeError(w, http.StatusForbidden, "not your chapter")
		return nil, nil, false
	}
	return chapter, book, true
}

func pathID(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/inkwellhq/inkwell-web/internal/database"
	"github.com/inkwellhq/inkwell-web/internal/models"
)

type BookService struct {
	db *database.DB
}

func NewBookService(db *database.DB) *BookService {
	return &BookService{db: db}
}

// CountWords counts whitespace-separated words in prose
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CreateBook creates a new book project for a user
func (s *BookService) CreateBook(userID int, req *models.CreateBookRequest) (*models.Book, error) {
	book := &models.Book{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Status:      models.BookStatusDraft,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO books (user_id, title, description, genre, status, created_at, updated_at)
		VALUES (:user_id, :title, :description, :genre, :status, :created_at, :updated_at)
	`
	result, err := s.db.NamedExec(query, book)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get book ID: %w", err)
	}
	book.ID = int(id)
	return book, nil
}

// GetBook retrieves a single book by ID
func (s *BookService) GetBook(bookID int) (*models.Book, error) {
	var book models.Book
	err := s.db.Get(&book, `SELECT * FROM books WHERE id = ?`, bookID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// GetBooks lists a user's books, most recently updated first
func (s *BookService) GetBooks(userID int) ([]models.Book, error) {
	books := []models.Book{}
	query := `SELECT * FROM books WHERE user_id = ? ORDER BY updated_at DESC`
	if err := s.db.Select(&books, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// UpdateBook updates book metadata (title, description, genre, outline, status)
func (s *BookService) UpdateBook(bookID int, title, description, genre, outline, status *string) (*models.Book, error) {
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}

	if title != nil {
		book.Title = *title
	}
	if description != nil {
		book.Description = *description
	}
	if genre != nil {
		book.Genre = *genre
	}
	if outline != nil {
		book.Outline = *outline
	}
	if status != nil {
		book.Status = *status
	}
	book.UpdatedAt = time.Now()

	query := `
		UPDATE books SET title = :title, description = :description, genre = :genre,
			outline = :outline, status = :status, updated_at = :updated_at
		WHERE id = :id
	`
	if _, err := s.db.NamedExec(query, book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book and, via cascade, its chapters
func (s *BookService) DeleteBook(bookID int) error {
	result, err := s.db.Exec(`DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("book not found")
	}
	return nil
}

// CreateChapter adds a chapter to a book
func (s *BookService) CreateChapter(req *models.CreateChapterRequest) (*models.Chapter, error) {
	if _, err := s.GetBook(req.BookID); err != nil {
		return nil, err
	}

	chapter := &models.Chapter{
		BookID:     req.BookID,
		Title:      req.Title,
		Content:    req.Content,
		Outline:    req.Outline,
		Status:     models.ChapterStatusDraft,
		OrderIndex: req.OrderIndex,
		WordCount:  CountWords(req.Content),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	query := `
		INSERT INTO chapters (book_id, title, content, outline, status, order_index, word_count, created_at, updated_at)
		VALUES (:book_id, :title, :content, :outline, :status, :order_index, :word_count, :created_at, :updated_at)
	`
	result, err := s.db.NamedExec(query, chapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter ID: %w", err)
	}
	chapter.ID = int(id)

	if err := s.refreshBookCounts(req.BookID); err != nil {
		return nil, err
	}
	return chapter, nil
}

// GetChapter retrieves a single chapter by ID
func (s *BookService) GetChapter(chapterID int) (*models.Chapter, error) {
	var chapter models.Chapter
	err := s.db.Get(&chapter, `SELECT * FROM chapters WHERE id = ?`, chapterID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chapter not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return &chapter, nil
}

// GetChapters lists a book's chapters in reading order
func (s *BookService) GetChapters(bookID int) ([]models.Chapter, error) {
	chapters := []models.Chapter{}
	query := `SELECT * FROM chapters WHERE book_id = ? ORDER BY order_index, id`
	if err := s.db.Select(&chapters, query, bookID); err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

// UpdateChapter applies an editor save. The returned delta is how many
// words the save added (negative when text was cut); callers use a
// positive delta to log writing activity.
func (s *BookService) UpdateChapter(chapterID int, req *models.UpdateChapterRequest) (*models.Chapter, int, error) {
	chapter, err := s.GetChapter(chapterID)
	if err != nil {
		return nil, 0, err
	}

	previousWords := chapter.WordCount

	if req.Title != nil {
		chapter.Title = *req.Title
	}
	if req.Outline != nil {
		chapter.Outline = *req.Outline
	}
	if req.Status != nil {
		chapter.Status = *req.Status
	}
	if req.Content != nil {
		chapter.Content = *req.Content
		chapter.WordCount = CountWords(*req.Content)
	}
	chapter.UpdatedAt = time.Now()

	query := `
		UPDATE chapters SET title = :title, content = :content, outline = :outline,
			status = :status, word_count = :word_count, updated_at = :updated_at
		WHERE id = :id
	`
	if _, err := s.db.NamedExec(query, chapter); err != nil {
		return nil, 0, fmt.Errorf("failed to update chapter: %w", err)
	}

	if err := s.refreshBookCounts(chapter.BookID); err != nil {
		return nil, 0, err
	}

	return chapter, chapter.WordCount - previousWords, nil
}

// DeleteChapter removes a chapter and refreshes its book's counters
func (s *BookService) DeleteChapter(chapterID int) error {
	chapter, err := s.GetChapter(chapterID)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(`DELETE FROM chapters WHERE id = ?`, chapterID); err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return s.refreshBookCounts(chapter.BookID)
}

// GetBookStats aggregates a user's totals across all books
func (s *BookService) GetBookStats(userID int) (*models.BookStats, error) {
	var stats models.BookStats
	query := `
		SELECT
			COUNT(*) AS total_books,
			COALESCE(SUM(chapter_count), 0) AS total_chapters,
			COALESCE(SUM(word_count), 0) AS total_words,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed_books
		FROM books WHERE user_id = ?
	`
	if err := s.db.Get(&stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get book stats: %w", err)
	}
	return &stats, nil
}

// refreshBookCounts recomputes a book's word and chapter roll-ups from
// its chapters
func (s *BookService) refreshBookCounts(bookID int) error {
	query := `
		UPDATE books SET
			word_count = (SELECT COALESCE(SUM(word_count), 0) FROM chapters WHERE book_id = ?),
			chapter_count = (SELECT COUNT(*) FROM chapters WHERE book_id = ?),
			updated_at = ?
		WHERE id = ?
	`
	if _, err := s.db.Exec(query, bookID, bookID, time.Now(), bookID); err != nil {
		return fmt.Errorf("failed to refresh book counts: %w", err)
	}
	return nil
}

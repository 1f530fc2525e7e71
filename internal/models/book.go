package models

import (
	"time"
)

// Book statuses
const (
	BookStatusDraft      = "draft"
	BookStatusInProgress = "in_progress"
	BookStatusCompleted  = "completed"
)

// Chapter statuses
const (
	ChapterStatusOutline   = "outline"
	ChapterStatusDraft     = "draft"
	ChapterStatusEditing   = "editing"
	ChapterStatusCompleted = "completed"
)

// Book is a single book project
type Book struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Genre        string    `json:"genre" db:"genre"`
	Outline      string    `json:"outline" db:"outline"`
	Status       string    `json:"status" db:"status"` // draft, in_progress, completed
	WordCount    int       `json:"word_count" db:"word_count"`
	ChapterCount int       `json:"chapter_count" db:"chapter_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Chapter belongs to a book; order_index fixes its position
type Chapter struct {
	ID         int       `json:"id" db:"id"`
	BookID     int       `json:"book_id" db:"book_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	Outline    string    `json:"outline" db:"outline"`
	Status     string    `json:"status" db:"status"` // outline, draft, editing, completed
	OrderIndex int       `json:"order_index" db:"order_index"`
	WordCount  int       `json:"word_count" db:"word_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBookRequest represents the request to create a book project
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
}

// CreateChapterRequest represents the request to add a chapter
type CreateChapterRequest struct {
	BookID     int    `json:"book_id" validate:"required"`
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Content    string `json:"content"`
	Outline    string `json:"outline"`
	OrderIndex int    `json:"order_index"`
}

// UpdateChapterRequest carries an editor save
type UpdateChapterRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Outline *string `json:"outline"`
	Status  *string `json:"status"`
}

// BookStats aggregates a user's writing output across all books
type BookStats struct {
	TotalBooks     int `json:"total_books" db:"total_books"`
	TotalChapters  int `json:"total_chapters" db:"total_chapters"`
	TotalWords     int `json:"total_words" db:"total_words"`
	CompletedBooks int `json:"completed_books" db:"completed_books"`
}

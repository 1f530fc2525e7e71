// Package export renders a book and its chapters into downloadable
// plain-text and Markdown documents.
package export

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/inkwellhq/inkwell-web/internal/models"
)

// Format identifies a supported export format
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Document is a rendered export, ready to stream to the client
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Export renders the book into the requested format. Chapters are
// expected in reading order; the service layer sorts by order_index.
func Export(book *models.Book, chapters []models.Chapter, format Format) (*Document, error) {
	switch format {
	case FormatText:
		return exportText(book, chapters), nil
	case FormatMarkdown:
		return exportMarkdown(book, chapters), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportText(book *models.Book, chapters []models.Chapter) *Document {
	var b strings.Builder

	b.WriteString(book.Title + "\n")
	b.WriteString(strings.Repeat("=", len(book.Title)) + "\n\n")
	if book.Description != "" {
		b.WriteString(book.Description + "\n\n")
	}

	for _, chapter := range chapters {
		b.WriteString(chapter.Title + "\n")
		b.WriteString(strings.Repeat("-", len(chapter.Title)) + "\n\n")
		b.WriteString(stripMarkdown(chapter.Content))
		b.WriteString("\n\n")
	}

	return &Document{
		Filename:    exportFilename(book, "txt"),
		ContentType: "text/plain; charset=utf-8",
		Content:     []byte(b.String()),
	}
}

func exportMarkdown(book *models.Book, chapters []models.Chapter) *Document {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", book.Title)
	if book.Description != "" {
		b.WriteString(book.Description + "\n\n")
	}

	for _, chapter := range chapters {
		fmt.Fprintf(&b, "## %s\n\n", chapter.Title)
		// Chapter prose already uses "## " sub-section headings; demote
		// them one level so they nest under the chapter heading
		content := strings.ReplaceAll("\n"+chapter.Content, "\n## ", "\n### ")
		b.WriteString(strings.TrimPrefix(content, "\n"))
		b.WriteString("\n\n")
	}

	return &Document{
		Filename:    exportFilename(book, "md"),
		ContentType: "text/markdown; charset=utf-8",
		Content:     []byte(b.String()),
	}
}

// exportFilename builds a safe, unique download name from the book title
func exportFilename(book *models.Book, ext string) string {
	slug := slugify(book.Title)
	if slug == "" {
		slug = "book"
	}
	return fmt.Sprintf("%s-%s.%s", slug, uuid.NewString()[:8], ext)
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// stripMarkdown removes heading markers and emphasis for plain-text
// output, leaving the prose itself untouched
func stripMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, "#")
		if trimmed != line {
			lines[i] = strings.TrimSpace(trimmed)
			continue
		}
		lines[i] = strings.ReplaceAll(strings.ReplaceAll(line, "**", ""), "*", "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

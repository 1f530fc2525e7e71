package writing

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwellhq/inkwell-web/internal/llm"
	"github.com/inkwellhq/inkwell-web/internal/logger"
	"github.com/inkwellhq/inkwell-web/internal/models"
)

// Generator turns book metadata into outline and chapter prose via the
// configured LLM provider
type Generator struct {
	llm    llm.LLM
	logger *logger.Log
}

func NewGenerator(client llm.LLM) *Generator {
	return &Generator{
		llm:    client,
		logger: logger.New(),
	}
}

// ChapterOutline is one entry of a generated book outline
type ChapterOutline struct {
	Title   string `json:"title"`
	Outline string `json:"outline"`
}

// GenerateOutlines asks the LLM for a chapter-by-chapter outline of the
// book and parses the "Chapter N: Title" sections out of the response
func (g *Generator) GenerateOutlines(ctx context.Context, book *models.Book, numberOfChapters int) ([]ChapterOutline, error) {
	if numberOfChapters <= 0 {
		return nil, fmt.Errorf("number of chapters must be positive")
	}

	prompt := g.outlinePrompt(book, numberOfChapters)
	g.logger.Debug(fmt.Sprintf("Generating %d chapter outlines for book %d", numberOfChapters, book.ID))

	response, err := g.llm.GenerateResponse(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("outline generation failed: %w", err)
	}

	outlines := parseOutlines(response)
	if len(outlines) == 0 {
		// Model ignored the format; keep the prose as a single outline
		// rather than discarding it
		outlines = []ChapterOutline{{
			Title:   "Chapter 1",
			Outline: strings.TrimSpace(response),
		}}
	}
	return outlines, nil
}

// GenerateChapterContent asks the LLM to draft prose for one chapter
// from its outline
func (g *Generator) GenerateChapterContent(ctx context.Context, book *models.Book, chapterTitle, outline string) (string, error) {
	if strings.TrimSpace(outline) == "" {
		return "", fmt.Errorf("chapter outline is required")
	}

	prompt := g.chapterPrompt(book, chapterTitle, outline)
	g.logger.Debug(fmt.Sprintf("Generating content for chapter %q", chapterTitle))

	response, err := g.llm.GenerateResponse(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chapter generation failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}

func (g *Generator) outlinePrompt(book *models.Book, numberOfChapters int) string {
	style := ResolveTemplate(book.Genre)

	var b strings.Builder
	fmt.Fprintf(&b, "Please create %d chapter outlines for a %s book titled %q.\n\n", numberOfChapters, style.Genre, book.Title)
	if book.Description != "" {
		fmt.Fprintf(&b, "Book Description:\n%s\n\n", book.Description)
	}
	b.WriteString("For each chapter, provide a descriptive title and a detailed outline of what happens in it. ")
	b.WriteString("Make the chapters flow logically and build on each other, with a clear beginning, middle, and end across the book.\n\n")
	b.WriteString("Format each chapter as:\nChapter X: [Title]\n[Outline text]\n\n")
	fmt.Fprintf(&b, "Style guidance: write in a %s voice. %s", style.Voice, style.Guidance)
	return b.String()
}

func (g *Generator) chapterPrompt(book *models.Book, chapterTitle, outline string) string {
	style := ResolveTemplate(book.Genre)

	var b strings.Builder
	fmt.Fprintf(&b, "Please write a chapter titled %q based on the following outline:\n\n%s\n\n", chapterTitle, outline)
	fmt.Fprintf(&b, "Book Information:\n- Title: %s\n", book.Title)
	if book.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", book.Description)
	}
	b.WriteString("\nGuidelines:\n")
	b.WriteString("1. Write a chapter with a clear beginning, middle, and end\n")
	b.WriteString("2. Divide the chapter into logical sub-sections with \"## [Sub-section Title]\" markdown headings\n")
	b.WriteString("3. Use correct grammar, consistent tense, and a consistent point of view\n")
	b.WriteString("4. End with a conclusion that creates anticipation for the next chapter\n\n")
	fmt.Fprintf(&b, "Style guidance: write in a %s voice. %s", style.Voice, style.Guidance)
	return b.String()
}

// parseOutlines splits an LLM response on "Chapter N: Title" headings
func parseOutlines(response string) []ChapterOutline {
	var outlines []ChapterOutline
	var current *ChapterOutline
	var body []string

	flush := func() {
		if current != nil {
			current.Outline = strings.TrimSpace(strings.Join(body, "\n"))
			outlines = append(outlines, *current)
		}
		body = nil
	}

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(strings.TrimLeft(line, "#* "))
		if title, ok := parseChapterHeading(trimmed); ok {
			flush()
			current = &ChapterOutline{Title: title}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return outlines
}

// parseChapterHeading matches lines of the form "Chapter 3: The Storm"
func parseChapterHeading(line string) (string, bool) {
	if !strings.HasPrefix(line, "Chapter ") {
		return "", false
	}
	rest := strings.TrimPrefix(line, "Chapter ")
	i := strings.IndexByte(rest, ':')
	if i <= 0 {
		return "", false
	}
	for _, r := range rest[:i] {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	title := strings.TrimSpace(rest[i+1:])
	if title == "" {
		return "", false
	}
	return title, true
}

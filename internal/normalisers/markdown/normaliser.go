// Package markdown turns extracted Markdown into ingestable documents.
// The extraction collaborator (PDF-to-Markdown) runs outside this
// repository; this package only validates and cleans its output.
// Document structure (headings, tables, paragraphs) is preserved for
// the chunker; extractor artifacts such as stray HTML tags and image
// references are removed.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/prism-labs/memogen/internal/core/domain"
)

var (
	htmlTags      = regexp.MustCompile(`<[^>]+>`)
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	boldHeadings  = regexp.MustCompile(`(?m)^(#+)\s*\*\*(.*?)\*\*\s*$`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normaliser converts raw extracted Markdown into documents.
type Normaliser struct{}

// New creates a markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise validates and cleans raw markdown, returning a new document.
// Malformed input (empty or invalid UTF-8) is rejected with
// domain.ErrInvalidInput, never repaired.
func (n *Normaliser) Normalise(raw []byte, sourceURI string) (*domain.Document, error) {
	content := string(raw)
	if !utf8.ValidString(content) {
		return nil, domain.ErrInvalidInput
	}

	content = clean(content)
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrInvalidInput
	}

	doc := &domain.Document{
		ID:          uuid.New().String(),
		SourceURI:   sourceURI,
		Title:       extractTitle(content, sourceURI),
		Content:     content,
		ExtractedAt: time.Now().UTC(),
	}
	return doc, nil
}

// clean removes extractor artifacts while keeping markdown structure.
func clean(content string) string {
	content = htmlTags.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = boldHeadings.ReplaceAllString(content, "$1 $2")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// extractTitle extracts a title from the first H1 heading or falls back
// to the filename.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

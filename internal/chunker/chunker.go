// Package chunker splits normalised Markdown into retrieval-sized
// chunks. Split boundaries prefer paragraph breaks, then sentence
// terminators, and only fall back to hard character splits for
// pathological input. Markdown tables are kept whole so that row/column
// relationships survive retrieval.
package chunker

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prism-labs/memogen/internal/core/domain"
)

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters
// carried from one chunk into the next.
const DefaultOverlap = 200

// Chunker splits document content into overlapping chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Overlap must leave room for new content in every chunk.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// Split chunks the document's content. Empty content produces no chunks.
func (c *Chunker) Split(doc *domain.Document) []domain.Chunk {
	pieces := c.assemble(splitBlocks(doc.Content))
	if len(pieces) == 0 {
		return nil
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Position:   i,
			Text:       text,
			Provenance: domain.ProvenanceExtracted,
			CreatedAt:  now,
		}
	}
	return chunks
}

// block is a paragraph or table extracted from the markdown source.
type block struct {
	text  string
	table bool
}

// splitBlocks separates content into paragraphs and tables. A table is
// a run of consecutive lines starting with '|'.
func splitBlocks(content string) []block {
	lines := strings.Split(content, "\n")

	var blocks []block
	var para, table []string

	flushPara := func() {
		text := strings.TrimSpace(strings.Join(para, "\n"))
		if text != "" {
			blocks = append(blocks, block{text: text})
		}
		para = para[:0]
	}
	flushTable := func() {
		text := strings.TrimSpace(strings.Join(table, "\n"))
		if text != "" {
			blocks = append(blocks, block{text: text, table: true})
		}
		table = table[:0]
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "|"):
			flushPara()
			table = append(table, trimmed)
		case trimmed == "":
			flushTable()
			flushPara()
		default:
			flushTable()
			para = append(para, line)
		}
	}
	flushTable()
	flushPara()

	return blocks
}

// assemble packs blocks into chunks of roughly chunkSize characters,
// carrying overlap between consecutive chunks.
func (c *Chunker) assemble(blocks []block) []string {
	var chunks []string
	var cur strings.Builder

	flush := func() string {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text != "" {
			chunks = append(chunks, text)
		}
		return text
	}
	carry := func(prev string) {
		if tail := overlapTail(prev, c.overlap); tail != "" {
			cur.WriteString(tail)
			cur.WriteString("\n")
		}
	}
	add := func(piece string) {
		if cur.Len() > 0 && cur.Len()+len(piece) > c.chunkSize {
			carry(flush())
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(piece)
	}

	for _, b := range blocks {
		if b.table {
			// Tables stay whole regardless of size.
			add(b.text)
			continue
		}
		if len(b.text) <= c.chunkSize {
			add(b.text)
			continue
		}
		// Oversized paragraph: fall back to sentence boundaries.
		for _, sentence := range splitSentences(b.text) {
			if len(sentence) <= c.chunkSize {
				add(sentence)
				continue
			}
			// Pathological sentence: hard character split.
			for start := 0; start < len(sentence); start += c.chunkSize {
				end := start + c.chunkSize
				if end > len(sentence) {
					end = len(sentence)
				}
				add(sentence[start:end])
			}
		}
	}
	flush()

	return chunks
}

// overlapTail returns the final sentences of text up to roughly n
// characters, so the next chunk starts with shared context.
func overlapTail(text string, n int) string {
	if n <= 0 || text == "" {
		return ""
	}
	if len(text) <= n {
		return text
	}
	sentences := splitSentences(text)
	var tail []string
	size := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		if size+len(sentences[i]) > n {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		size += len(sentences[i])
	}
	if len(tail) == 0 {
		// No sentence fits; take the last n bytes from a space boundary.
		cut := text[len(text)-n:]
		if idx := strings.IndexByte(cut, ' '); idx >= 0 && idx+1 < len(cut) {
			cut = cut[idx+1:]
		}
		return strings.TrimSpace(cut)
	}
	return strings.TrimSpace(strings.Join(tail, " "))
}

// splitSentences splits text on sentence terminators, keeping the
// terminator with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

package services

import (
	"fmt"
	"regexp"
	"strings"

	"seo-content-ops/models"

	"github.com/google/uuid"
)

// ArticleSection is one heading-delimited block of article body text,
// produced by the content sync parser.
type ArticleSection struct {
	Heading string
	Text    string
}

// ChunkingService turns parsed article sections into warehouse chunks.
// Sections keep their heading as the chunk title so downstream weighting
// can recognize titles, intros and conclusions. Long sections are split
// on paragraph boundaries.
type ChunkingService struct {
	maxChunkSize   int
	minChunkSize   int
	paragraphRegex *regexp.Regexp
}

func NewChunkingService(maxChunkSize, minChunkSize int) *ChunkingService {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if minChunkSize <= 0 || minChunkSize > maxChunkSize {
		minChunkSize = maxChunkSize / 10
	}
	return &ChunkingService{
		maxChunkSize:   maxChunkSize,
		minChunkSize:   minChunkSize,
		paragraphRegex: regexp.MustCompile(`\n\n+`),
	}
}

// ChunkArticle builds the ordered chunk set for one article. The article
// title always becomes chunk 0 so the title weight applies to it.
func (cs *ChunkingService) ChunkArticle(articleID, title string, sections []ArticleSection) []models.ArticleChunk {
	var chunks []models.ArticleChunk

	appendChunk := func(heading, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		index := len(chunks)
		chunks = append(chunks, models.ArticleChunk{
			ArticleID: articleID,
			ChunkID:   fmt.Sprintf("%s_%d_%s", articleID, index, uuid.NewString()[:8]),
			Index:     index,
			Title:     heading,
			Text:      text,
		})
	}

	if strings.TrimSpace(title) != "" {
		appendChunk(title, title)
	}

	for _, section := range sections {
		text := strings.TrimSpace(section.Text)
		if text == "" {
			continue
		}
		if len(text) <= cs.maxChunkSize {
			appendChunk(section.Heading, text)
			continue
		}
		for _, part := range cs.splitSection(text) {
			appendChunk(section.Heading, part)
		}
	}

	// Merge a trailing fragment into its predecessor so the last chunk
	// never falls below the minimum size.
	if n := len(chunks); n >= 2 && len(chunks[n-1].Text) < cs.minChunkSize &&
		chunks[n-1].Title == chunks[n-2].Title {
		chunks[n-2].Text += "\n\n" + chunks[n-1].Text
		chunks = chunks[:n-1]
	}

	return chunks
}

// splitSection breaks an oversized section on paragraph boundaries,
// falling back to a hard split for a single huge paragraph.
func (cs *ChunkingService) splitSection(text string) []string {
	paragraphs := cs.paragraphRegex.Split(text, -1)

	var parts []string
	current := new(strings.Builder)

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current = new(strings.Builder)
		}
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if len(paragraph) > cs.maxChunkSize {
			flush()
			for start := 0; start < len(paragraph); start += cs.maxChunkSize {
				end := start + cs.maxChunkSize
				if end > len(paragraph) {
					end = len(paragraph)
				}
				parts = append(parts, paragraph[start:end])
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraph) > cs.maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return parts
}

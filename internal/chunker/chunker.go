package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

// ErrInvalidParams is returned when the window parameters cannot produce a
// valid chunking (non-positive window, or overlap not below the window).
var ErrInvalidParams = errors.New("chunker: invalid chunk parameters")

// Options controls the sliding window. MaxWords is the window size W,
// OverlapWords the overlap O between consecutive windows (0 <= O < W).
// Sections, when supplied, enriches chunk provenance with section names.
type Options struct {
	MaxWords     int
	OverlapWords int
	Sections     []models.Section
}

// Split tokenizes the pages into whitespace-delimited words and produces
// sliding windows of MaxWords words advancing by MaxWords-OverlapWords per
// step. The final window may be shorter; no padding. Every chunk records the
// page span(s) its word range falls in, with the word index where each page
// begins, and the section containing its starting word when sections were
// supplied. A document with zero words yields an empty slice and no error.
func Split(docID string, pages []models.Page, opts Options) ([]models.Chunk, error) {
	if opts.MaxWords <= 0 || opts.OverlapWords < 0 || opts.OverlapWords >= opts.MaxWords {
		return nil, fmt.Errorf("%w: max_words=%d overlap_words=%d", ErrInvalidParams, opts.MaxWords, opts.OverlapWords)
	}

	words, pageOfWord := tokenize(pages)
	if len(words) == 0 {
		log.Debug().Str("document", docID).Msg("No words to chunk")
		return nil, nil
	}

	step := opts.MaxWords - opts.OverlapWords
	var chunks []models.Chunk
	for start := 0; start < len(words); start += step {
		end := start + opts.MaxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, models.Chunk{
			ID:         uuid.NewString(),
			DocumentID: docID,
			Content:    strings.Join(words[start:end], " "),
			WordCount:  end - start,
			StartWord:  start,
			Pages:      pageSpans(pageOfWord, start, end),
			Section:    sectionOf(opts.Sections, start),
		})
		if end == len(words) {
			break
		}
	}

	log.Debug().Str("document", docID).Int("words", len(words)).Int("chunks", len(chunks)).Msg("Chunked document")
	return chunks, nil
}

// tokenize flattens pages into one word stream, remembering the owning page
// number of every word.
func tokenize(pages []models.Page) ([]string, []int) {
	var words []string
	var pageOfWord []int
	for _, page := range pages {
		for _, w := range strings.Fields(page.Text) {
			words = append(words, w)
			pageOfWord = append(pageOfWord, page.Number)
		}
	}
	return words, pageOfWord
}

// pageSpans collapses the per-word page numbers of [start, end) into spans,
// one per page touched, each carrying the document word index where that
// page takes over.
func pageSpans(pageOfWord []int, start, end int) []models.PageSpan {
	var spans []models.PageSpan
	for i := start; i < end; i++ {
		if len(spans) == 0 || spans[len(spans)-1].Page != pageOfWord[i] {
			spans = append(spans, models.PageSpan{Page: pageOfWord[i], FromWord: i})
		}
	}
	return spans
}

// sectionOf finds the section whose word range contains the chunk's starting
// word. A chunk crossing a section boundary is tagged with the section it
// starts in.
func sectionOf(sections []models.Section, startWord int) string {
	for _, s := range sections {
		if startWord >= s.StartWord && startWord < s.EndWord {
			return s.Name
		}
	}
	return ""
}

package structurer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

// Options tunes the heading heuristic.
type Options struct {
	// MaxHeadingLen is the character length above which an all-caps line is
	// no longer considered a heading. Zero means the default.
	MaxHeadingLen int
}

const defaultMaxHeadingLen = 80

var headingKeywordRe = regexp.MustCompile(models.HeadingKeywordRegex)

// Structure groups page text into named sections using a heading heuristic:
// a trimmed, non-empty line is a heading if it is predominantly uppercase
// and short, or if it starts with a structural keyword (chapter, section,
// appendix, ...). Text before the first heading lands in the implicit
// default section. The output is best-effort segmentation; a document with
// no detected headings yields exactly one section spanning all pages.
//
// Word offsets count whitespace-delimited words across all pages in order,
// matching the chunker's tokenization, so a chunk's starting word can be
// mapped to its enclosing section.
func Structure(pages []models.Page, opts Options) []models.Section {
	maxLen := opts.MaxHeadingLen
	if maxLen <= 0 {
		maxLen = defaultMaxHeadingLen
	}

	var sections []models.Section
	current := models.Section{Name: models.DefaultSectionName, StartPage: 1}
	var body []string
	wordIdx := 0

	flush := func(endPage, endWord int) {
		// The implicit default section is dropped when nothing preceded
		// the first heading.
		if current.Name == models.DefaultSectionName && len(sections) == 0 && endWord == current.StartWord {
			return
		}
		current.Text = strings.Join(body, " ")
		current.EndPage = endPage
		current.EndWord = endWord
		sections = append(sections, current)
	}

	lastPage := 1
	for _, page := range pages {
		if page.Number > 0 {
			lastPage = page.Number
		}
		for _, line := range strings.Split(page.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			words := len(strings.Fields(line))
			if isHeading(line, maxLen) {
				flush(page.Number, wordIdx)
				current = models.Section{
					Name:      line,
					StartPage: page.Number,
					StartWord: wordIdx,
				}
				body = body[:0]
			} else {
				body = append(body, line)
			}
			wordIdx += words
		}
	}
	flush(lastPage, wordIdx)

	if len(sections) == 0 {
		// Headingless (possibly empty) document: one catch-all section.
		sections = append(sections, models.Section{
			Name:      models.DefaultSectionName,
			StartPage: 1,
			EndPage:   lastPage,
			EndWord:   wordIdx,
		})
	}

	log.Debug().Int("sections", len(sections)).Int("words", wordIdx).Msg("Structured document")
	return sections
}

func isHeading(line string, maxLen int) bool {
	if headingKeywordRe.MatchString(line) {
		return true
	}
	if len(line) > maxLen {
		return false
	}
	return isMostlyUpper(line)
}

// isMostlyUpper reports whether every cased rune in the line is uppercase,
// requiring at least one letter so digits and punctuation alone do not pass.
func isMostlyUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

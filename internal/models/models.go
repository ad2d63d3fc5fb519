package models

// Page is the raw text extracted from one page of a document.
// Numbers are 1-indexed; Text may be empty for blank or image-only pages.
type Page struct {
	Number int
	Text   string
}

// Document is an uploaded file reduced to its ordered pages.
type Document struct {
	ID    string
	Name  string
	Pages []Page
}

// Section is a heuristically detected region of a document. Word offsets
// count whitespace-delimited words across the whole document in page order,
// the same tokenization the chunker uses. EndWord is exclusive.
type Section struct {
	Name      string
	Text      string
	StartPage int
	EndPage   int
	StartWord int
	EndWord   int
}

// PageSpan records that a chunk covers words of one page, starting at the
// given document word index. A chunk crossing a page boundary carries one
// span per page so citations can name every page it touches.
type PageSpan struct {
	Page     int
	FromWord int
}

// Chunk is a bounded, overlap-aware slice of document text with provenance.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	WordCount  int
	StartWord  int
	Pages      []PageSpan
	Section    string
}

// PageNumbers lists the pages a chunk covers, in order.
func (c Chunk) PageNumbers() []int {
	nums := make([]int, len(c.Pages))
	for i, s := range c.Pages {
		nums[i] = s.Page
	}
	return nums
}

// ScoredChunk pairs a retrieved chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Citation links an answer excerpt back to its origin.
type Citation struct {
	Label   int
	Pages   []int
	Section string
	Excerpt string
}

// Prompt is a fully assembled, citation-aware model prompt. Built fresh per
// query and never persisted.
type Prompt struct {
	System    string
	Context   string
	Question  string
	Citations []Citation
}

// Answer is what a query ultimately produces: the model's text plus the
// ordered citation list and optional follow-up questions.
type Answer struct {
	Content   string
	Citations []Citation
	FollowUps []string
}

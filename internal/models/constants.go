package models

const (
	HeadingKeywordRegex = `(?i)^(CHAPTER|SECTION|PART|INTRODUCTION|CONCLUSION|SUMMARY|APPENDIX)\b`
	DefaultSectionName  = "Introduction"
	NoContextMarker     = "No supporting context was found in the document."
	ContextSeparator    = "\n---\n"
	ThinkTag            = `(?s)<think>.*?</think>`
)

const (
	DefaultSystemPrompt = `You are a helpful assistant. Answer the question using only the provided document excerpts. Cite excerpts by their [n] label and mention page numbers and section headings when relevant. If the excerpts do not contain the answer, say so.`

	FollowUpPromptTemplate = `Based on the following answer, generate 3 brief, clear follow-up questions (one per line, no numbering):

%s`
)

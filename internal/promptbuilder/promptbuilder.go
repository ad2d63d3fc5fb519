package promptbuilder

import (
	"fmt"
	"strings"

	"pdf-rag/internal/models"
)

// Build assembles a grounded prompt from the retrieved chunks and the
// question. Each chunk gets a citation label in retrieval order, label 1
// being the highest-similarity hit, rendered together with its provenance.
// Zero retrieval hits produce a prompt that states explicitly that no
// context was found, so the model is never misled into presenting an
// ungrounded answer as grounded. Deterministic for identical inputs.
func Build(question string, retrieved []models.ScoredChunk, system string) models.Prompt {
	if system == "" {
		system = models.DefaultSystemPrompt
	}

	if len(retrieved) == 0 {
		return models.Prompt{
			System:   system,
			Context:  models.NoContextMarker,
			Question: question,
		}
	}

	citations := make([]models.Citation, len(retrieved))
	var ctx strings.Builder
	for i, sc := range retrieved {
		label := i + 1
		citations[i] = models.Citation{
			Label:   label,
			Pages:   sc.Chunk.PageNumbers(),
			Section: sc.Chunk.Section,
			Excerpt: sc.Chunk.Content,
		}
		if i > 0 {
			ctx.WriteString(models.ContextSeparator)
		}
		ctx.WriteString(fmt.Sprintf("[%d] (%s)\n%s", label, FormatProvenance(citations[i]), sc.Chunk.Content))
	}

	return models.Prompt{
		System:    system,
		Context:   ctx.String(),
		Question:  question,
		Citations: citations,
	}
}

// FormatProvenance renders a citation's origin the way the presentation
// layer shows it, e.g. "page 2, section INTRODUCTION" or "pages 1-2".
func FormatProvenance(c models.Citation) string {
	var b strings.Builder
	switch len(c.Pages) {
	case 0:
		b.WriteString("page unknown")
	case 1:
		fmt.Fprintf(&b, "page %d", c.Pages[0])
	default:
		fmt.Fprintf(&b, "pages %d-%d", c.Pages[0], c.Pages[len(c.Pages)-1])
	}
	if c.Section != "" {
		fmt.Fprintf(&b, ", section %s", c.Section)
	}
	return b.String()
}

// UserMessage renders the prompt's user-role message: the cited context
// block followed by the question.
func UserMessage(p models.Prompt) string {
	return fmt.Sprintf("Document excerpts:\n\n%s\n\nQuestion: %s", p.Context, p.Question)
}

package retriever

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/embedding"
	"pdf-rag/internal/models"
	"pdf-rag/internal/vectorindex"
)

// Retriever embeds a question and fetches the top-k chunks for it. Pure
// orchestration: it holds no state beyond its collaborators and the chunk
// lookup table needed to map index hits back to chunk metadata.
type Retriever struct {
	embedder embedding.Embedder
	index    *vectorindex.Index
	chunks   map[string]models.Chunk
}

func New(embedder embedding.Embedder, index *vectorindex.Index, chunks []models.Chunk) *Retriever {
	byID := make(map[string]models.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}
	return &Retriever{embedder: embedder, index: index, chunks: byID}
}

// Retrieve embeds the question as a single-item batch, searches the index,
// and returns the scored chunks in ranking order. An empty index produces
// an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]models.ScoredChunk, error) {
	vecs, err := r.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("retriever: embed question: %w", err)
	}

	hits, err := r.index.Search(vecs[0], k)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := r.chunks[hit.ChunkID]
		if !ok {
			return nil, fmt.Errorf("retriever: index returned unknown chunk id %s", hit.ChunkID)
		}
		results = append(results, models.ScoredChunk{Chunk: chunk, Score: hit.Score})
	}

	log.Debug().Str("question", question).Int("hits", len(results)).Msg("Retrieved chunks")
	return results, nil
}

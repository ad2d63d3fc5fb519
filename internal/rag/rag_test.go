package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

func testConfig(chunkWords, overlapWords, topK int) *config.Config {
	return &config.Config{
		RAG:      config.RAGConfig{ChunkWords: chunkWords, OverlapWords: overlapWords, TopK: topK},
		EmbedLLM: config.LLMConfig{Provider: "local", Dimension: 128},
	}
}

func TestIngestAndRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("Should retrieve the sky chunk first for a sky question", func(t *testing.T) {
		pipeline := New(testConfig(6, 1, 1))

		doc := models.Document{
			ID:   "doc-1",
			Name: "colors.pdf",
			Pages: []models.Page{
				{Number: 1, Text: "The sky is blue."},
				{Number: 2, Text: "The grass is green."},
			},
		}
		session, err := pipeline.Ingest(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, 2, len(session.Chunks))

		results, err := pipeline.Retrieve(ctx, "What color is the sky?")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Contains(t, results[0].Chunk.Content, "The sky is blue.")
		assert.Equal(t, 1, results[0].Chunk.Pages[0].Page)
	})

	t.Run("Should build a cited prompt from retrieval", func(t *testing.T) {
		pipeline := New(testConfig(6, 1, 2))
		_, err := pipeline.Ingest(ctx, models.Document{
			ID:    "doc-2",
			Pages: []models.Page{{Number: 1, Text: "alpha beta gamma delta"}},
		})
		require.NoError(t, err)

		prompt, err := pipeline.BuildPrompt(ctx, "alpha?")
		require.NoError(t, err)
		require.Len(t, prompt.Citations, 1)
		assert.Equal(t, 1, prompt.Citations[0].Label)
		assert.Contains(t, prompt.Context, "alpha beta gamma delta")
	})

	t.Run("Should produce a no-context prompt for an empty document", func(t *testing.T) {
		pipeline := New(testConfig(6, 1, 3))
		_, err := pipeline.Ingest(ctx, models.Document{
			ID:    "doc-3",
			Pages: []models.Page{{Number: 1, Text: ""}},
		})
		require.NoError(t, err)

		prompt, err := pipeline.BuildPrompt(ctx, "anything?")
		require.NoError(t, err)
		assert.Contains(t, prompt.Context, models.NoContextMarker)
		assert.Empty(t, prompt.Citations)
	})

	t.Run("Should fail queries before any ingest", func(t *testing.T) {
		pipeline := New(testConfig(6, 1, 3))
		_, err := pipeline.Retrieve(ctx, "question")
		require.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("Should swap sessions on re-ingest instead of mutating", func(t *testing.T) {
		pipeline := New(testConfig(10, 2, 3))

		first, err := pipeline.Ingest(ctx, models.Document{
			ID:    "doc-old",
			Pages: []models.Page{{Number: 1, Text: "old content about trains"}},
		})
		require.NoError(t, err)

		second, err := pipeline.Ingest(ctx, models.Document{
			ID:    "doc-new",
			Pages: []models.Page{{Number: 1, Text: "new content about boats"}},
		})
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, 1, first.Index.Size(), "old snapshot must stay intact")
		assert.Equal(t, "doc-new", pipeline.Session().Document.ID)
	})

	t.Run("Should propagate invalid chunk parameters", func(t *testing.T) {
		pipeline := New(testConfig(5, 5, 3))
		_, err := pipeline.Ingest(ctx, models.Document{
			ID:    "doc-bad",
			Pages: []models.Page{{Number: 1, Text: "some words"}},
		})
		require.Error(t, err)
	})

	t.Run("Should tag sections on retrieved chunks", func(t *testing.T) {
		pipeline := New(testConfig(4, 0, 1))
		_, err := pipeline.Ingest(ctx, models.Document{
			ID: "doc-4",
			Pages: []models.Page{
				{Number: 1, Text: "APPENDIX\ntables and figures here"},
			},
		})
		require.NoError(t, err)

		results, err := pipeline.Retrieve(ctx, "where are the tables?")
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "APPENDIX", results[0].Chunk.Section)
	})
}

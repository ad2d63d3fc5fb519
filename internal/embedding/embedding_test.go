package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/config"
)

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestNormalize(t *testing.T) {
	t.Run("Should scale a vector to unit norm", func(t *testing.T) {
		out := Normalize([]float32{3, 4})
		assert.InDelta(t, 1.0, norm(out), 1e-5)
		assert.InDelta(t, 0.6, float64(out[0]), 1e-6)
		assert.InDelta(t, 0.8, float64(out[1]), 1e-6)
	})

	t.Run("Should pass the zero vector through unchanged", func(t *testing.T) {
		in := []float32{0, 0, 0}
		out := Normalize(in)
		assert.Equal(t, in, out)
	})
}

func TestHashingEmbedder(t *testing.T) {
	ctx := context.Background()
	e := NewHashingEmbedder(64)

	t.Run("Should be deterministic across calls", func(t *testing.T) {
		v1, err := e.EmbedQuery(ctx, "the sky is blue")
		require.NoError(t, err)
		v2, err := e.EmbedQuery(ctx, "the sky is blue")
		require.NoError(t, err)
		assert.Equal(t, v1, v2)
	})

	t.Run("Should produce unit-norm vectors for non-empty text", func(t *testing.T) {
		vecs, err := e.EmbedTexts(ctx, []string{"alpha beta", "gamma", "delta epsilon zeta"})
		require.NoError(t, err)
		require.Len(t, vecs, 3)
		for _, v := range vecs {
			assert.Len(t, v, 64)
			assert.InDelta(t, 1.0, norm(v), 1e-5)
		}
	})

	t.Run("Should preserve batch order and length", func(t *testing.T) {
		texts := []string{"one", "two", "three"}
		vecs, err := e.EmbedTexts(ctx, texts)
		require.NoError(t, err)
		require.Len(t, vecs, len(texts))
		for i, text := range texts {
			single, err := e.EmbedQuery(ctx, text)
			require.NoError(t, err)
			assert.Equal(t, single, vecs[i], "batch entry %d must match single embedding", i)
		}
	})

	t.Run("Should ignore case and surrounding punctuation", func(t *testing.T) {
		v1, err := e.EmbedQuery(ctx, "Sky?")
		require.NoError(t, err)
		v2, err := e.EmbedQuery(ctx, "sky")
		require.NoError(t, err)
		assert.Equal(t, v1, v2)
	})

	t.Run("Should return the zero vector for empty text", func(t *testing.T) {
		v, err := e.EmbedQuery(ctx, "")
		require.NoError(t, err)
		assert.InDelta(t, 0.0, norm(v), 1e-9)
	})

	t.Run("Should return nil for an empty batch", func(t *testing.T) {
		vecs, err := e.EmbedTexts(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, vecs)
	})
}

func TestProvider(t *testing.T) {
	t.Run("Should initialize once and share the embedder", func(t *testing.T) {
		p := NewProvider(&config.LLMConfig{Provider: "local", Dimension: 32})

		e1, err := p.Get()
		require.NoError(t, err)
		e2, err := p.Get()
		require.NoError(t, err)
		assert.Same(t, e1.(*HashingEmbedder), e2.(*HashingEmbedder))
	})

	t.Run("Should surface an unknown provider as a sticky error", func(t *testing.T) {
		p := NewProvider(&config.LLMConfig{Provider: "bogus"})

		_, err := p.Get()
		require.Error(t, err)
		_, err2 := p.Get()
		assert.Equal(t, err, err2)
	})
}

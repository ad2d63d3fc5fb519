package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// HashingEmbedder is a deterministic, offline embedder: a feature-hashed
// bag of words. Each token is lowercased, stripped of surrounding
// punctuation, and hashed into one of Dimension buckets; the bucket counts
// are then L2-normalized. It is no substitute for a learned model, but its
// vectors still rank chunks sharing query terms above unrelated ones, which
// keeps the full pipeline runnable (and testable) without a model server.
type HashingEmbedder struct {
	dim int
}

func NewHashingEmbedder(dim int) *HashingEmbedder {
	return &HashingEmbedder{dim: dim}
}

func (e *HashingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = e.embed(t)
	}
	return vecs, nil
}

func (e *HashingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *HashingEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, field := range strings.Fields(text) {
		token := normalizeToken(field)
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.dim)]++
	}
	return Normalize(vec)
}

func normalizeToken(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.ToLower(s)
}

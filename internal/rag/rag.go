package rag

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chunker"
	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/promptbuilder"
	"pdf-rag/internal/retriever"
	"pdf-rag/internal/structurer"
	"pdf-rag/internal/vectorindex"
)

// ErrNoDocument is returned by Query before any document has been ingested.
var ErrNoDocument = errors.New("rag: no document ingested")

// Session is one fully built document: chunks, sections, the vector index
// over them, and the retriever bound to all three. A session is immutable
// once built; re-ingestion builds a new one and swaps it in, so in-flight
// queries keep a consistent snapshot.
type Session struct {
	Document  models.Document
	Sections  []models.Section
	Chunks    []models.Chunk
	Index     *vectorindex.Index
	Retriever *retriever.Retriever
}

// RAG wires the whole pipeline: parse, structure, chunk, embed, index at
// ingest time; retrieve, build prompt, call the model at query time.
type RAG struct {
	cfg      *config.Config
	provider *embedding.Provider
	session  atomic.Pointer[Session]
}

func New(cfg *config.Config) *RAG {
	return &RAG{cfg: cfg, provider: embedding.NewProvider(&cfg.EmbedLLM)}
}

// IngestFile extracts per-page text from a document file and ingests it.
func (r *RAG) IngestFile(ctx context.Context, filePath string) (*Session, error) {
	pages, err := parser.ExtractPages(filePath)
	if err != nil {
		return nil, err
	}
	doc := models.Document{ID: helper.MustUUID(), Name: filePath, Pages: pages}
	return r.Ingest(ctx, doc)
}

// Ingest builds a fresh session for the document and swaps it in as the
// active one. A document with no extractable words still yields a valid
// (empty) session; queries against it return no-context answers rather
// than errors.
func (r *RAG) Ingest(ctx context.Context, doc models.Document) (*Session, error) {
	sections := structurer.Structure(doc.Pages, structurer.Options{})

	chunks, err := chunker.Split(doc.ID, doc.Pages, chunker.Options{
		MaxWords:     r.cfg.RAG.ChunkWords,
		OverlapWords: r.cfg.RAG.OverlapWords,
		Sections:     sections,
	})
	if err != nil {
		return nil, err
	}

	embedder, err := r.provider.Get()
	if err != nil {
		return nil, err
	}

	index := vectorindex.New(r.cfg.EmbedLLM.Dimension, vectorindex.DuplicateSkip)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		vecs, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		entries := make([]vectorindex.Entry, len(chunks))
		for i, c := range chunks {
			entries[i] = vectorindex.Entry{ChunkID: c.ID, Vector: vecs[i]}
		}
		if err := index.Insert(entries); err != nil {
			return nil, err
		}
	}

	session := &Session{
		Document:  doc,
		Sections:  sections,
		Chunks:    chunks,
		Index:     index,
		Retriever: retriever.New(embedder, index, chunks),
	}
	r.session.Store(session)

	log.Info().Str("document", doc.Name).Int("pages", len(doc.Pages)).
		Int("sections", len(sections)).Int("chunks", len(chunks)).Msg("Ingested document")
	return session, nil
}

// Session returns the active session, or nil before the first ingest.
func (r *RAG) Session() *Session { return r.session.Load() }

// Retrieve answers the retrieval half of a query: top-k scored chunks for
// the question against the active session.
func (r *RAG) Retrieve(ctx context.Context, question string) ([]models.ScoredChunk, error) {
	session := r.session.Load()
	if session == nil {
		return nil, ErrNoDocument
	}
	return session.Retriever.Retrieve(ctx, question, r.cfg.RAG.TopK)
}

// Query runs the full flow: retrieve, build the grounded prompt, ask the
// model, and attach the citation list and follow-up questions. Follow-up
// generation is best effort; its failure does not fail the answer.
func (r *RAG) Query(ctx context.Context, question string) (*models.Answer, error) {
	retrieved, err := r.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	prompt := promptbuilder.Build(question, retrieved, models.DefaultSystemPrompt)

	content, err := r.answer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{Content: content, Citations: prompt.Citations}

	followUps, err := llmservice.FollowUpQuestions(ctx, &r.cfg.LLM, content)
	if err != nil {
		log.Warn().Err(err).Msg("Could not generate follow-up questions")
	} else {
		answer.FollowUps = followUps
	}
	return answer, nil
}

// answer sends the prompt to the configured chat model. OpenRouter goes
// through the streaming chat-completions client; everything else goes
// through langchaingo.
func (r *RAG) answer(ctx context.Context, prompt models.Prompt) (string, error) {
	if r.cfg.LLM.Provider == "openrouter" {
		return r.streamCompletion(ctx, prompt)
	}
	return llmservice.Answer(ctx, &r.cfg.LLM, prompt)
}

// Answer sends an already-built prompt to the configured chat model, for
// callers that retrieve through a different backend (e.g. the persistent
// store).
func (r *RAG) Answer(ctx context.Context, prompt models.Prompt) (string, error) {
	return r.answer(ctx, prompt)
}

// BuildPrompt exposes prompt assembly without a model call, for dry runs
// and for callers that do their own LLM transport.
func (r *RAG) BuildPrompt(ctx context.Context, question string) (models.Prompt, error) {
	retrieved, err := r.Retrieve(ctx, question)
	if err != nil {
		return models.Prompt{}, err
	}
	return promptbuilder.Build(question, retrieved, models.DefaultSystemPrompt), nil
}

// Embedder exposes the shared embedder for callers that persist or archive
// sessions.
func (r *RAG) Embedder() (embedding.Embedder, error) { return r.provider.Get() }

package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

// Store persists an ingested session (chunks plus their precomputed
// embeddings and provenance) in a chromem-go collection, so a document can
// be ingested once and queried across runs.
type Store struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	filePath      string
	compress      bool
	encryptionKey string
}

const compress = false

// NewStore opens (or creates) a chromem database at dbPath. With inMemory
// set, nothing touches disk until Export.
func NewStore(dbPath, collectionName string, inMemory bool, encryptionKey string) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	return &Store{
		db:            db,
		dbPath:        dbPath,
		compress:      compress,
		encryptionKey: encryptionKey,
		filePath:      dbPath + "/" + collectionName + ".chromem",
	}, nil
}

// GetOrCreateCollection binds the store to the named collection.
func (s *Store) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	c, err := s.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	s.collection = c
	return c, nil
}

// SaveChunks writes chunks and their embeddings into the collection.
// vectors must parallel chunks; embeddings are stored as-is, chromem does
// not re-embed.
func (s *Store) SaveChunks(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chromemdb: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  chunkMetadata(c),
			Embedding: vectors[i],
		}
	}

	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return models.NewExternalError(models.CollaboratorStore, err)
	}
	return nil
}

// Query runs a similarity search with a precomputed query embedding and
// maps the hits back to scored chunks. k is clamped to the collection size;
// an empty collection yields an empty result.
func (s *Store) Query(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, k, nil, nil)
	if err != nil {
		return nil, models.NewExternalError(models.CollaboratorStore, err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		scored = append(scored, models.ScoredChunk{
			Chunk: chunkFromResult(res),
			Score: float64(res.Similarity),
		})
	}
	return scored, nil
}

// DeleteCollection drops the bound collection.
func (s *Store) DeleteCollection() error {
	if err := s.db.DeleteCollection(s.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return nil
}

// Export writes the collection to an encrypted file. Only meaningful for
// in-memory stores; persistent ones are already on disk.
func (s *Store) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if s.collection == nil {
		return fmt.Errorf("collection is required")
	}

	log.Debug().Str("collection", s.collection.Name).Str("file", s.filePath).Msg("Exporting collection")
	if err := s.db.ExportToFile(s.filePath, s.compress, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

// Import restores a previously exported collection.
func (s *Store) Import(ctx context.Context) error {
	if err := s.db.ImportFromFile(s.filePath, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to import database: %v", err)
	}
	return nil
}

func chunkMetadata(c models.Chunk) map[string]string {
	pages := make([]string, len(c.Pages))
	for i, span := range c.Pages {
		pages[i] = strconv.Itoa(span.Page)
	}
	return map[string]string{
		"document_id": c.DocumentID,
		"section":     c.Section,
		"pages":       strings.Join(pages, ","),
		"start_word":  strconv.Itoa(c.StartWord),
		"word_count":  strconv.Itoa(c.WordCount),
	}
}

func chunkFromResult(res chromem.Result) models.Chunk {
	chunk := models.Chunk{
		ID:         res.ID,
		DocumentID: res.Metadata["document_id"],
		Content:    res.Content,
		Section:    res.Metadata["section"],
	}
	chunk.StartWord, _ = strconv.Atoi(res.Metadata["start_word"])
	chunk.WordCount, _ = strconv.Atoi(res.Metadata["word_count"])
	for _, p := range strings.Split(res.Metadata["pages"], ",") {
		if n, err := strconv.Atoi(p); err == nil {
			chunk.Pages = append(chunk.Pages, models.PageSpan{Page: n})
		}
	}
	return chunk
}

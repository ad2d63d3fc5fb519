package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

// ChunkRecord archives one embedded chunk with its provenance in Postgres
// (pgvector). The archive is an optional side store; the in-memory index
// stays authoritative for retrieval semantics.
type ChunkRecord struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	ChunkID       string    `bun:"chunk_id,notnull,unique"`
	DocumentID    string    `bun:"document_id,notnull"`
	Content       string    `bun:"content,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
	SourceName    string    `bun:"source_name"`
	FirstPage     int       `bun:"first_page"`
	LastPage      int       `bun:"last_page"`
	Section       string    `bun:"section"`
	StartWord     int       `bun:"start_word"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*ChunkRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

// StoreChunks archives embedded chunks in one batch insert.
func StoreChunks(ctx context.Context, db *bun.DB, sourceName string, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	records := make([]ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = ChunkRecord{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Embedding:  vectors[i],
			SourceName: sourceName,
			Section:    c.Section,
			StartWord:  c.StartWord,
		}
		if pages := c.PageNumbers(); len(pages) > 0 {
			records[i].FirstPage = pages[0]
			records[i].LastPage = pages[len(pages)-1]
		}
	}
	_, err := db.NewInsert().Model(&records).Exec(ctx)
	if err != nil {
		return models.NewExternalError(models.CollaboratorStore, err)
	}
	return nil
}

// SearchChunks returns the limit nearest archived chunks to the query
// embedding, using pgvector's distance operator.
func SearchChunks(ctx context.Context, db *bun.DB, queryEmbedding []float32, limit int) ([]ChunkRecord, error) {
	var records []ChunkRecord
	err := db.NewSelect().
		Model(&records).
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, models.NewExternalError(models.CollaboratorStore, err)
	}
	return records, nil
}

// DropChunks drops the archive table.
func DropChunks(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*ChunkRecord)(nil)).IfExists().Exec(ctx)
	return err
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/chunker"
	"pdf-rag/internal/config"
	"pdf-rag/internal/db"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/promptbuilder"
	"pdf-rag/internal/rag"
	"pdf-rag/internal/structurer"
)

const (
	configFilePath = "./configs/config.yaml"
	dbPath         = "./chromemdb"
	collectionName = "pdf_sessions"
	inMemory       = false
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the document file to ingest")
	query := flag.String("query", "", "Question to answer against the ingested document")
	persist := flag.Bool("persist", false, "Persist/query the session through the chromem store")
	archive := flag.Bool("pg", false, "Archive embedded chunks to Postgres")
	dryRun := flag.Bool("dry-run", false, "Parse and chunk only, no embedding or model calls")
	flag.Parse()

	if *filePath == "" && *query == "" {
		log.Fatal().Msg("Please provide a document file using the -file flag, a question using the -query flag, or both")
	}

	cfg := loadConfig()
	ctx := context.Background()
	pipeline := rag.New(cfg)

	if *filePath != "" {
		ingestDocument(ctx, pipeline, cfg, *filePath, *persist, *archive, *dryRun)
	}

	if *query != "" {
		if *filePath == "" && *persist {
			queryPersisted(ctx, pipeline, cfg, *query)
			return
		}
		runQuery(ctx, pipeline, *query)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		log.Warn().Str("path", configFilePath).Msg("Config file not found, using defaults")
		cfg = config.Default()
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

func ingestDocument(ctx context.Context, pipeline *rag.RAG, cfg *config.Config, filePath string, persist, archive, dryRun bool) {
	if dryRun {
		pages, err := parser.ExtractPages(filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing document")
		}
		sections := structurer.Structure(pages, structurer.Options{})
		chunks, err := chunker.Split(helper.MustUUID(), pages, chunker.Options{
			MaxWords:     cfg.RAG.ChunkWords,
			OverlapWords: cfg.RAG.OverlapWords,
			Sections:     sections,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Error chunking document")
		}
		log.Info().Msg("Parsed sections")
		helper.PrettyPrint(sections)
		log.Info().Msg("Chunks")
		helper.PrettyPrint(chunks)
		return
	}

	session, err := pipeline.IngestFile(ctx, filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}

	if persist {
		persistSession(ctx, cfg, session)
	}
	if archive {
		archiveSession(ctx, cfg, filePath, session)
	}
}

func persistSession(ctx context.Context, cfg *config.Config, session *rag.Session) {
	if err := helper.CreateFolder(dbPath); err != nil {
		log.Fatal().Err(err).Msg("Error creating folder")
	}

	store, err := chromemdb.NewStore(dbPath, collectionName, inMemory, cfg.RAG.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	if _, err := store.GetOrCreateCollection(collectionName); err != nil {
		log.Fatal().Err(err).Msg("Error creating collection")
	}

	entries := session.Index.Entries()
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		vectors[i] = e.Vector
	}
	if err := store.SaveChunks(ctx, session.Chunks, vectors); err != nil {
		log.Fatal().Err(err).Msg("Error persisting session")
	}

	if inMemory {
		if err := store.Export(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error exporting collection")
		}
	}
}

func archiveSession(ctx context.Context, cfg *config.Config, sourceName string, session *rag.Session) {
	dbClient, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	dbInstance := db.NewDB(dbClient, cfg.Database.Debug)
	defer dbInstance.Close()

	if err := db.InitDB(ctx, dbInstance); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}

	entries := session.Index.Entries()
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		vectors[i] = e.Vector
	}
	if err := db.StoreChunks(ctx, dbInstance, sourceName, session.Chunks, vectors); err != nil {
		log.Fatal().Err(err).Msg("Error archiving chunks")
	}
}

func runQuery(ctx context.Context, pipeline *rag.RAG, query string) {
	answer, err := pipeline.Query(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}
	printAnswer(query, answer)
}

// queryPersisted answers a question against a previously persisted session
// instead of an in-process one.
func queryPersisted(ctx context.Context, pipeline *rag.RAG, cfg *config.Config, query string) {
	store, err := chromemdb.NewStore(dbPath, collectionName, inMemory, cfg.RAG.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	if _, err := store.GetOrCreateCollection(collectionName); err != nil {
		log.Fatal().Err(err).Msg("Error creating collection")
	}

	embedder, err := pipeline.Embedder()
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	queryVec, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error embedding query")
	}

	retrieved, err := store.Query(ctx, queryVec, cfg.RAG.TopK)
	if err != nil {
		log.Fatal().Err(err).Msg("Error searching persisted session")
	}

	prompt := promptbuilder.Build(query, retrieved, models.DefaultSystemPrompt)
	content, err := pipeline.Answer(ctx, prompt)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying model")
	}

	answer := &models.Answer{Content: content, Citations: prompt.Citations}
	if followUps, err := llmservice.FollowUpQuestions(ctx, &cfg.LLM, content); err == nil {
		answer.FollowUps = followUps
	}
	printAnswer(query, answer)
}

func printAnswer(query string, answer *models.Answer) {
	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for _, c := range answer.Citations {
		fmt.Printf("[%d] %s\n", c.Label, promptbuilder.FormatProvenance(c))
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Content)

	if len(answer.FollowUps) > 0 {
		log.Info().Msg("Follow-up questions: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		for i, q := range answer.FollowUps {
			fmt.Printf("%d. %s\n", i+1, q)
		}
		fmt.Println()
	}
}

// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/traingrc/textweaver/internal/auth"
	"github.com/traingrc/textweaver/internal/chunker"
	"github.com/traingrc/textweaver/internal/config"
	"github.com/traingrc/textweaver/internal/db"
	"github.com/traingrc/textweaver/internal/faillog"
	"github.com/traingrc/textweaver/internal/handlers"
	"github.com/traingrc/textweaver/internal/llm"
	"github.com/traingrc/textweaver/internal/parsing"
	"github.com/traingrc/textweaver/internal/pipeline"
	"github.com/traingrc/textweaver/internal/query"
	"github.com/traingrc/textweaver/internal/tokenizer"
)

func main() {
	// Load environment variables from .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
		log.Println(".env file loaded successfully")
	} else {
		log.Println(".env file not found, proceeding with existing environment variables")
	}

	cfg := config.Load()

	metric, err := db.ParseMetric(cfg.Metric)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.EmbeddingEndpoint == "" {
		log.Fatal("EMBEDDING_ENDPOINT must be set")
	}

	// Initialize the vector index: Postgres+pgvector when a connection
	// string is configured, embedded SQLite otherwise.
	var index db.Index
	var tokens db.TokenStore
	if cfg.DBConnectionString != "" {
		pg, err := db.NewPostgresIndex(cfg.DBConnectionString, metric, cfg.EmbeddingDims)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		index, tokens = pg, pg
		log.Println("Using Postgres vector index")
	} else {
		lite, err := db.NewSQLiteIndex(cfg.DBPath, metric)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		index, tokens = lite, lite
		log.Printf("Using SQLite vector index at %s", cfg.DBPath)
	}
	defer index.Close()

	// Shared service handles, constructed once and injected everywhere.
	embedder := llm.NewEmbeddingClient(cfg.EmbeddingEndpoint, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	tok := tokenizer.NewSimple()
	authorizer := auth.NewAccessTokenAuthorizer(tokens)

	extractors := &parsing.Registry{}
	if cfg.TranscribeEndpoint != "" {
		extractors.Transcriber = llm.NewTranscriptionClient(cfg.TranscribeEndpoint, cfg.TranscribeAPIKey, cfg.TranscribeModel)
	}
	if cfg.OCREndpoint != "" {
		extractors.Recognizer = llm.NewOCRClient(cfg.OCREndpoint, cfg.OCRAPIKey)
	}

	ingest := pipeline.New(
		chunker.New(tok, cfg.MaxChunkTokens),
		embedder,
		index,
		faillog.New(cfg.FailLogPath),
		cfg.Instruction,
	)
	pool := pipeline.NewPool(cfg.Workers, cfg.QueueSize, ingest, extractors)
	pool.Start()
	defer pool.Stop()

	// Initialize Handlers
	uploadHandler := &handlers.UploadHandler{
		Pool:          pool,
		MaxUploadSize: cfg.MaxUploadSize,
	}
	searchHandler := &handlers.SearchHandler{
		Engine: query.NewEngine(embedder, index, cfg.Instruction, metric),
		Auth:   authorizer,
	}
	transcriptionHandler := &handlers.TranscriptionHandler{
		Transcriber:   extractors.Transcriber,
		MaxUploadSize: cfg.MaxUploadSize,
	}

	// Register Routes
	http.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims, err := checkBearer(r, authorizer)
		if err != nil {
			http.Error(w, "", http.StatusUnauthorized)
			return
		}
		uploadHandler.UploadFile(claims.Username, w, r)
	})

	http.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		searchHandler.Search(w, r)
	})

	http.HandleFunc("/speech2text", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, err := checkBearer(r, authorizer); err != nil {
			http.Error(w, "", http.StatusUnauthorized)
			return
		}
		transcriptionHandler.Transcribe(w, r)
	})

	http.HandleFunc("/health", handlers.Health)

	// Start Server
	log.Printf("Textweaver server is running on %s\n", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func checkBearer(r *http.Request, authorizer auth.Authorizer) (auth.Claims, error) {
	token, err := handlers.BearerToken(r)
	if err != nil {
		return auth.Claims{}, err
	}
	return authorizer.Verify(r.Context(), token)
}

// Package config reads server configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultInstruction   = "Represent the cybersecurity content:"
	DefaultMetric        = "euclidean"
	DefaultDBPath        = "textweaver.db"
	DefaultFailLogPath   = "errors.txt"
	DefaultMaxChunk      = 256
	DefaultEmbeddingDims = 768
	DefaultWorkers       = 4
	DefaultQueueSize     = 64
	DefaultMaxUploadSize = 100 << 20 // 100 MB
)

// Config is everything main needs to assemble the server.
type Config struct {
	Addr string

	// DBConnectionString selects Postgres+pgvector; when empty, the
	// embedded SQLite index at DBPath is used instead.
	DBConnectionString string
	DBPath             string

	EmbeddingEndpoint string
	EmbeddingAPIKey   string
	EmbeddingModel    string
	EmbeddingDims     int

	TranscribeEndpoint string
	TranscribeAPIKey   string
	TranscribeModel    string
	OCREndpoint        string
	OCRAPIKey          string

	Instruction    string
	Metric         string
	MaxChunkTokens int

	Workers       int
	QueueSize     int
	FailLogPath   string
	MaxUploadSize int64
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Addr: getEnv("IP_ADDRESS", "") + ":" + getEnv("PORT", "8000"),

		DBConnectionString: os.Getenv("DB_CONNECTION_STRING"),
		DBPath:             getEnv("DB_PATH", DefaultDBPath),

		EmbeddingEndpoint: os.Getenv("EMBEDDING_ENDPOINT"),
		EmbeddingAPIKey:   os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "hkunlp/instructor-xl"),
		EmbeddingDims:     getEnvInt("EMBEDDING_DIMS", DefaultEmbeddingDims),

		TranscribeEndpoint: os.Getenv("TRANSCRIBE_ENDPOINT"),
		TranscribeAPIKey:   os.Getenv("TRANSCRIBE_API_KEY"),
		TranscribeModel:    getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		OCREndpoint:        os.Getenv("OCR_ENDPOINT"),
		OCRAPIKey:          os.Getenv("OCR_API_KEY"),

		Instruction:    getEnv("INSTRUCTION_PREFIX", DefaultInstruction),
		Metric:         getEnv("SEARCH_METRIC", DefaultMetric),
		MaxChunkTokens: getEnvInt("MAX_CHUNK_TOKENS", DefaultMaxChunk),

		Workers:       getEnvInt("INGEST_WORKERS", DefaultWorkers),
		QueueSize:     getEnvInt("INGEST_QUEUE_SIZE", DefaultQueueSize),
		FailLogPath:   getEnv("FAILURE_LOG_PATH", DefaultFailLogPath),
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE", DefaultMaxUploadSize)),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all tunables read from environment variables. Database and
// RabbitMQ connection parameters are read directly by their packages; this
// struct carries the pipeline and retrieval knobs that get injected around.
type Config struct {
	// Upload / ingestion
	UploadDir     string
	MaxFileSize   int64 // bytes
	WorkerCount   int   // bounded ingestion worker pool size
	ChunkSize     int   // max chunk length in runes
	ChunkOverlap  int   // shared runes between consecutive chunks
	PathAttempts  int   // bounded attempts for collision-free storage paths

	// Embedding backend (Ollama-compatible HTTP API)
	EmbeddingBaseURL string
	EmbeddingModel   string

	// Generation backend for the chat endpoint
	LLMModel string

	// Retrieval
	SearchTopK      int
	SearchThreshold float64
	HNSWEfSearch    int // hnsw.ef_search, quality/speed tradeoff
	IVFFlatProbes   int // ivfflat.probes, for the alternative index type
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		MaxFileSize:  int64(getEnvAsInt("MAX_FILE_SIZE_MB", 10)) * 1024 * 1024,
		WorkerCount:  getEnvAsInt("INGEST_WORKERS", 4),
		ChunkSize:    getEnvAsInt("CHUNK_SIZE", 256),
		ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 64),
		PathAttempts: getEnvAsInt("PATH_ATTEMPTS", 5),

		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "nomic-embed-text"),

		LLMModel: getEnv("LLM_MODEL", "qwen2:0.5b"),

		SearchTopK:      getEnvAsInt("SEARCH_TOP_K", 3),
		SearchThreshold: getEnvAsFloat("SEARCH_THRESHOLD", 0.3),
		HNSWEfSearch:    getEnvAsInt("HNSW_EF_SEARCH", 64),
		IVFFlatProbes:   getEnvAsInt("IVFFLAT_PROBES", 20),
	}
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, fmt.Sprintf("%d", defaultValue))
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, fmt.Sprintf("%g", defaultValue))
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

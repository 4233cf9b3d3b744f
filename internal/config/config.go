// Package config loads process configuration. Defaults are overridden by
// an optional TOML file, which is in turn overridden by environment
// variables, so deployed functions can stay env-only while the local CLI
// can carry a config file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the enrichment service and CLI.
type Config struct {
	ProjectID      string `toml:"project_id"`
	VertexAIRegion string `toml:"vertex_ai_region"`

	EnrichedPagesBucket string `toml:"enriched_pages_bucket"`
	FirestoreCollection string `toml:"firestore_collection"`

	DatabaseURL    string `toml:"database_url"`
	ChunkSizeBytes int    `toml:"chunk_size_bytes"`

	TemporaryFolder           string `toml:"temporary_folder"`
	PagesPerSplit             int    `toml:"pages_per_split"`
	ContextLinesBefore        int    `toml:"context_lines_before"`
	ContextLinesAfter         int    `toml:"context_lines_after"`
	MaxConcurrentDescriptions int    `toml:"max_concurrent_descriptions"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		VertexAIRegion:            "us-central1",
		FirestoreCollection:       "documents",
		ChunkSizeBytes:            3000,
		PagesPerSplit:             10,
		ContextLinesBefore:        5,
		ContextLinesAfter:         5,
		MaxConcurrentDescriptions: 5,
	}
}

// Load builds the configuration from defaults, the TOML file at path (when
// path is non-empty and the file exists) and finally the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	// A .env in the working directory feeds the environment overlay.
	_ = godotenv.Load()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.ProjectID = GetEnv("PROJECT_ID", cfg.ProjectID)
	cfg.VertexAIRegion = GetEnv("VERTEX_AI_REGION", cfg.VertexAIRegion)
	cfg.EnrichedPagesBucket = GetEnv("ENRICHED_PAGES_BUCKET", cfg.EnrichedPagesBucket)
	cfg.FirestoreCollection = GetEnv("FIRESTORE_COLLECTION", cfg.FirestoreCollection)
	cfg.DatabaseURL = GetEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.TemporaryFolder = GetEnv("TEMPORARY_FOLDER", cfg.TemporaryFolder)
	cfg.ChunkSizeBytes = getEnvInt("CHUNK_SIZE_BYTES", cfg.ChunkSizeBytes)
	cfg.PagesPerSplit = getEnvInt("PAGES_PER_SPLIT", cfg.PagesPerSplit)
	cfg.ContextLinesBefore = getEnvInt("CONTEXT_LINES_BEFORE", cfg.ContextLinesBefore)
	cfg.ContextLinesAfter = getEnvInt("CONTEXT_LINES_AFTER", cfg.ContextLinesAfter)
	cfg.MaxConcurrentDescriptions = getEnvInt("MAX_CONCURRENT_DESCRIPTIONS", cfg.MaxConcurrentDescriptions)

	return cfg, nil
}

// GetEnv reads an environment variable or returns a fallback value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

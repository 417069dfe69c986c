package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime configuration for the data-prep commands.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Chunking
	ChunkSize      int    `env:"CHUNK_SIZE" envDefault:"500" validate:"min=1"`
	ChunkOverlap   int    `env:"CHUNK_OVERLAP" envDefault:"100" validate:"min=0,ltfield=ChunkSize"`
	TokenizerModel string `env:"TOKENIZER_MODEL" envDefault:"gpt-3.5-turbo" validate:"required"`

	// Embeddings
	OpenAIKey          string `env:"OPENAI_API_KEY"`
	EmbeddingModel     string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small" validate:"required"`
	EmbeddingDimension int    `env:"EMBEDDING_DIMENSION" envDefault:"1536" validate:"min=1"`
	EmbedBatchSize     int    `env:"EMBED_BATCH_SIZE" envDefault:"64" validate:"min=1"`

	// Vector index
	VectorProvider string `env:"VECTOR_PROVIDER" envDefault:"milvus" validate:"oneof=milvus memory"`
	MilvusAddr     string `env:"MILVUS_ADDR" envDefault:"localhost:19530"`
	IndexName      string `env:"INDEX_NAME" envDefault:"showcase-index" validate:"required"`
	IndexMetric    string `env:"INDEX_METRIC" envDefault:"cosine" validate:"oneof=cosine l2 ip"`

	// Embedding cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none" validate:"oneof=redis none"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTLHours int    `env:"CACHE_TTL_HOURS" envDefault:"168" validate:"min=1"`

	// Ingestion
	DataDir       string `env:"DATA_DIR" envDefault:"."`
	IngestWorkers int    `env:"INGEST_WORKERS" envDefault:"4" validate:"min=1"`

	// Dataset conversion
	HFDataset string `env:"HF_DATASET" envDefault:"rag-datasets/rag-mini-wikipedia"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

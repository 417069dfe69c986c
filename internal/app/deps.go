package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3"

	"rag-prep/internal/cache"
	"rag-prep/internal/config"
	"rag-prep/internal/embeddings"
	"rag-prep/internal/logger"
	"rag-prep/internal/tokenizer"
	"rag-prep/internal/vectorstore"
)

// CoreDeps is the minimal bundle for commands that only touch local files
// and the dataset API.
type CoreDeps struct {
	Config config.Config
	Log    *slog.Logger
}

// Deps bundles the full ingestion runtime.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Tokenizer tokenizer.Tokenizer
	Embedder  embeddings.Embedder
	Index     vectorstore.Index
	Cache     cache.Cache
}

// BuildCore loads env, config, and the logger.
func BuildCore() (CoreDeps, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return CoreDeps{}, err
	}
	return CoreDeps{Config: cfg, Log: logger.New(cfg.LogLevel)}, nil
}

// Build loads core deps plus the tokenizer, embedder, vector index, and cache.
func Build(ctx context.Context) (Deps, error) {
	core, err := BuildCore()
	if err != nil {
		return Deps{}, err
	}
	cfg, log := core.Config, core.Log

	tok, err := tokenizer.ForModel(cfg.TokenizerModel)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	log.Info("using tiktoken tokenizer", "model", cfg.TokenizerModel)

	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	index, err := buildIndex(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}

	return Deps{
		Config:    cfg,
		Log:       log,
		Tokenizer: tok,
		Embedder:  embedder,
		Index:     index,
		Cache:     c,
	}, nil
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel), cfg.EmbeddingDimension)
	if err != nil {
		return nil, err
	}
	log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel, "dimension", cfg.EmbeddingDimension)
	return embedder, nil
}

func buildIndex(ctx context.Context, cfg config.Config, log *slog.Logger) (vectorstore.Index, error) {
	switch cfg.VectorProvider {
	case "milvus":
		idx, err := vectorstore.NewMilvus(ctx, cfg.MilvusAddr, cfg.IndexMetric)
		if err != nil {
			return nil, err
		}
		log.Info("using Milvus vector index", "addr", cfg.MilvusAddr, "index", cfg.IndexName, "metric", cfg.IndexMetric)
		return idx, nil
	case "memory":
		log.Info("using in-memory vector index", "index", cfg.IndexName)
		return vectorstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("invalid VECTOR_PROVIDER: %s (valid options: milvus, memory)", cfg.VectorProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info("using Redis embedding cache", "addr", cfg.RedisAddr)
		return c, nil
	case "none":
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, none)", cfg.CacheProvider)
	}
}

// Package ingest runs the chunk -> embed -> upsert pipeline over loaded
// documents.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rag-prep/internal/cache"
	"rag-prep/internal/chunker"
	"rag-prep/internal/embeddings"
	"rag-prep/internal/loader"
	"rag-prep/internal/retry"
	"rag-prep/internal/tokenizer"
	"rag-prep/internal/vectorstore"
)

const (
	retryAttempts = 3
	retryBase     = 500 * time.Millisecond
)

// Pipeline holds the collaborators and parameters of one ingestion setup.
type Pipeline struct {
	Log       *slog.Logger
	Tokenizer tokenizer.Tokenizer
	Embedder  embeddings.Embedder
	Index     vectorstore.Index
	Cache     cache.Cache

	ChunkOpts      chunker.Options
	EmbeddingModel string
	IndexName      string
	Dimension      int
	BatchSize      int
	Workers        int
	CacheTTL       time.Duration
}

// Result summarizes one ingestion run.
type Result struct {
	Documents int
	Chunks    int
	Embedded  int
	CacheHits int
}

// Run ensures the index exists, then processes documents concurrently.
// Each document is independent: its chunks are embedded (consulting the
// cache first) and upserted under ids "<path>_<chunkIndex>". The first
// failure cancels the remaining work.
func (p *Pipeline) Run(ctx context.Context, docs []loader.Document) (Result, error) {
	if err := p.ChunkOpts.Validate(); err != nil {
		return Result{}, err
	}
	runID := uuid.New()
	log := p.Log.With("run_id", runID.String())

	if err := p.Index.EnsureIndex(ctx, p.IndexName, p.Dimension); err != nil {
		return Result{}, fmt.Errorf("ensure index %s: %w", p.IndexName, err)
	}

	var (
		mu    sync.Mutex
		total Result
	)

	g, ctx := errgroup.WithContext(ctx)
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, doc := range docs {
		g.Go(func() error {
			res, err := p.ingestDocument(ctx, log, doc)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", doc.Path, err)
			}
			mu.Lock()
			total.Documents++
			total.Chunks += res.Chunks
			total.Embedded += res.Embedded
			total.CacheHits += res.CacheHits
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	log.Info("ingestion complete",
		"documents", total.Documents,
		"chunks", total.Chunks,
		"embedded", total.Embedded,
		"cache_hits", total.CacheHits,
	)
	return total, nil
}

func (p *Pipeline) ingestDocument(ctx context.Context, log *slog.Logger, doc loader.Document) (Result, error) {
	chunks, err := chunker.Split(p.Tokenizer, doc.Text, p.ChunkOpts)
	if err != nil {
		return Result{}, err
	}
	if len(chunks) == 0 {
		return Result{}, nil
	}

	vectors := make([]embeddings.Vector, len(chunks))
	var misses []int
	res := Result{Chunks: len(chunks)}

	for i, c := range chunks {
		vec, err := p.Cache.GetVector(ctx, cache.Key(p.EmbeddingModel, c.Text))
		if err != nil {
			log.Warn("cache lookup failed", "path", doc.Path, "chunk", c.Index, "err", err)
		}
		if vec != nil {
			vectors[i] = vec
			res.CacheHits++
			continue
		}
		misses = append(misses, i)
	}

	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = len(misses)
	}
	for start := 0; start < len(misses); start += batchSize {
		end := start + batchSize
		if end > len(misses) {
			end = len(misses)
		}
		batch := misses[start:end]

		texts := make([]string, len(batch))
		for j, i := range batch {
			texts[j] = chunks[i].Text
		}

		var embedded []embeddings.Vector
		err := retry.Do(ctx, retryAttempts, retryBase, func() error {
			var embedErr error
			embedded, embedErr = p.Embedder.EmbedBatch(ctx, texts)
			return embedErr
		})
		if err != nil {
			return Result{}, fmt.Errorf("embed batch: %w", err)
		}
		if len(embedded) != len(batch) {
			return Result{}, fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(batch))
		}

		for j, i := range batch {
			vectors[i] = embedded[j]
			res.Embedded++
			key := cache.Key(p.EmbeddingModel, chunks[i].Text)
			if err := p.Cache.SetVector(ctx, key, embedded[j], p.CacheTTL); err != nil {
				log.Warn("cache store failed", "path", doc.Path, "chunk", chunks[i].Index, "err", err)
			}
		}
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:     RecordID(doc.Path, c.Index),
			Values: vectors[i],
			Metadata: map[string]string{
				"source_file": doc.Path,
				"text":        c.Text,
			},
		}
	}

	err = retry.Do(ctx, retryAttempts, retryBase, func() error {
		return p.Index.Upsert(ctx, records)
	})
	if err != nil {
		return Result{}, fmt.Errorf("upsert: %w", err)
	}

	log.Debug("document ingested", "path", doc.Path, "chunks", len(chunks), "cache_hits", res.CacheHits)
	return res, nil
}

// RecordID is the vector id for a chunk: the document path joined with the
// chunk's position.
func RecordID(path string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", path, chunkIndex)
}

// Command ingest chunks local documents by tokens, embeds the chunks, and
// upserts them into the configured vector index.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"rag-prep/internal/app"
	"rag-prep/internal/chunker"
	"rag-prep/internal/ingest"
	"rag-prep/internal/loader"
)

func main() {
	var (
		dataDir = flag.String("data-dir", "", "documents directory (defaults to DATA_DIR)")
		verify  = flag.Bool("verify", false, "fetch the first upserted vector back after ingestion")
	)
	flag.Parse()

	ctx := context.Background()
	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Index.Close(ctx); err != nil {
			deps.Log.Warn("failed to close vector index", "err", err)
		}
		if err := deps.Cache.Close(); err != nil {
			deps.Log.Warn("failed to close cache", "err", err)
		}
	}()

	if err := run(ctx, deps, *dataDir, *verify); err != nil {
		deps.Log.Error("ingestion failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, deps app.Deps, dataDir string, verify bool) error {
	cfg := deps.Config
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	docs, err := loader.Load(dataDir, deps.Log)
	if err != nil {
		return err
	}
	deps.Log.Info("loaded documents", "count", len(docs), "dir", dataDir)
	if len(docs) == 0 {
		return nil
	}

	pipeline := &ingest.Pipeline{
		Log:       deps.Log,
		Tokenizer: deps.Tokenizer,
		Embedder:  deps.Embedder,
		Index:     deps.Index,
		Cache:     deps.Cache,
		ChunkOpts: chunker.Options{
			ChunkSize: cfg.ChunkSize,
			Overlap:   cfg.ChunkOverlap,
		},
		EmbeddingModel: cfg.EmbeddingModel,
		IndexName:      cfg.IndexName,
		Dimension:      cfg.EmbeddingDimension,
		BatchSize:      cfg.EmbedBatchSize,
		Workers:        cfg.IngestWorkers,
		CacheTTL:       time.Duration(cfg.CacheTTLHours) * time.Hour,
	}

	res, err := pipeline.Run(ctx, docs)
	if err != nil {
		return err
	}

	if verify && res.Chunks > 0 {
		id := ingest.RecordID(docs[0].Path, 0)
		fetched, err := deps.Index.Fetch(ctx, []string{id})
		if err != nil {
			return err
		}
		if rec, ok := fetched[id]; ok {
			deps.Log.Info("verified stored vector",
				"id", rec.ID,
				"dimension", len(rec.Values),
				"source_file", rec.Metadata["source_file"],
			)
		} else {
			deps.Log.Warn("verification fetch returned no record", "id", id)
		}
	}
	return nil
}

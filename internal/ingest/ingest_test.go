package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"rag-prep/internal/cache"
	"rag-prep/internal/chunker"
	"rag-prep/internal/embeddings"
	"rag-prep/internal/loader"
	"rag-prep/internal/vectorstore"
)

// wordTokenizer maps whitespace-delimited words to sequential ids.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string) ([]int, error) {
	words := strings.Fields(text)
	ids := make([]int, len(words))
	for i := range words {
		ids[i] = i
	}
	return ids, nil
}

func (wordTokenizer) Decode(ids []int) (string, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "w" + strconv.Itoa(id)
	}
	return strings.Join(parts, " "), nil
}

// countingEmbedder returns a fixed-dimension vector per input and counts calls.
type countingEmbedder struct {
	dim   int
	calls atomic.Int64
	texts atomic.Int64
	fail  error
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) (embeddings.Vector, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([]embeddings.Vector, error) {
	e.calls.Add(1)
	e.texts.Add(int64(len(texts)))
	if e.fail != nil {
		return nil, e.fail
	}
	vecs := make([]embeddings.Vector, len(texts))
	for i := range texts {
		vec := make(embeddings.Vector, e.dim)
		vec[0] = float32(len(texts[i]))
		vecs[i] = vec
	}
	return vecs, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("x ", n))
}

func newPipeline(emb embeddings.Embedder, idx vectorstore.Index, c cache.Cache) *Pipeline {
	return &Pipeline{
		Log:            testLogger(),
		Tokenizer:      wordTokenizer{},
		Embedder:       emb,
		Index:          idx,
		Cache:          c,
		ChunkOpts:      chunker.Options{ChunkSize: 10, Overlap: 2},
		EmbeddingModel: "test-model",
		IndexName:      "test-index",
		Dimension:      4,
		BatchSize:      8,
		Workers:        2,
		CacheTTL:       time.Hour,
	}
}

func TestRunUpsertsAllChunks(t *testing.T) {
	emb := &countingEmbedder{dim: 4}
	idx := vectorstore.NewMemory()
	p := newPipeline(emb, idx, cache.NewNoOpCache())

	docs := []loader.Document{
		{Path: "a.md", Text: words(25)},
		{Path: "sub/b.md", Text: words(7)},
	}
	res, err := p.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 25 words with size 10 step 8 -> starts 0,8,16,24 -> 4 chunks; 7 words -> 1 chunk
	if res.Documents != 2 || res.Chunks != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Embedded != 5 || res.CacheHits != 0 {
		t.Errorf("unexpected embed counts: %+v", res)
	}
	if idx.Len() != 5 {
		t.Errorf("expected 5 records in index, got %d", idx.Len())
	}

	got, err := idx.Fetch(context.Background(), []string{"a.md_0", "a.md_3", "sub/b.md_0"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 fetched records, got %d", len(got))
	}
	if got["a.md_0"].Metadata["source_file"] != "a.md" {
		t.Errorf("unexpected metadata: %v", got["a.md_0"].Metadata)
	}
	if got["a.md_0"].Metadata["text"] == "" {
		t.Error("expected chunk text in metadata")
	}
}

func TestRunBatchesEmbeddings(t *testing.T) {
	emb := &countingEmbedder{dim: 4}
	idx := vectorstore.NewMemory()
	p := newPipeline(emb, idx, cache.NewNoOpCache())
	p.BatchSize = 2
	p.Workers = 1

	// 25 words -> 4 chunks -> batches of 2, 2
	_, err := p.Run(context.Background(), []loader.Document{{Path: "a.md", Text: words(25)}})
	if err != nil {
		t.Fatal(err)
	}
	if calls := emb.calls.Load(); calls != 2 {
		t.Errorf("expected 2 embed calls, got %d", calls)
	}
	if texts := emb.texts.Load(); texts != 4 {
		t.Errorf("expected 4 embedded texts, got %d", texts)
	}
}

func TestRunUsesCachedVectors(t *testing.T) {
	emb := &countingEmbedder{dim: 4}
	idx := vectorstore.NewMemory()
	mc := new(cache.MockCache)
	cached := embeddings.Vector{9, 9, 9, 9}
	mc.On("GetVector", mock.Anything, mock.Anything).Return(cached, nil)

	p := newPipeline(emb, idx, mc)
	res, err := p.Run(context.Background(), []loader.Document{{Path: "a.md", Text: words(7)}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHits != 1 || res.Embedded != 0 {
		t.Fatalf("expected all-cached run, got %+v", res)
	}
	if calls := emb.calls.Load(); calls != 0 {
		t.Errorf("expected no embed calls, got %d", calls)
	}

	got, err := idx.Fetch(context.Background(), []string{"a.md_0"})
	if err != nil {
		t.Fatal(err)
	}
	if got["a.md_0"].Values[0] != 9 {
		t.Errorf("expected cached vector to be upserted, got %v", got["a.md_0"].Values)
	}
}

func TestRunPropagatesEmbedderFailure(t *testing.T) {
	want := errors.New("rate limited")
	emb := &countingEmbedder{dim: 4, fail: want}
	p := newPipeline(emb, vectorstore.NewMemory(), cache.NewNoOpCache())

	_, err := p.Run(context.Background(), []loader.Document{{Path: "a.md", Text: words(7)}})
	if !errors.Is(err, want) {
		t.Fatalf("expected embedder error, got %v", err)
	}
	// Bounded retry: the failing call is attempted retryAttempts times.
	if calls := emb.calls.Load(); calls != retryAttempts {
		t.Errorf("expected %d attempts, got %d", retryAttempts, calls)
	}
}

func TestRunRejectsInvalidChunkOptions(t *testing.T) {
	p := newPipeline(&countingEmbedder{dim: 4}, vectorstore.NewMemory(), cache.NewNoOpCache())
	p.ChunkOpts = chunker.Options{ChunkSize: 10, Overlap: 10}

	_, err := p.Run(context.Background(), []loader.Document{{Path: "a.md", Text: words(7)}})
	if !errors.Is(err, chunker.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestRecordID(t *testing.T) {
	if got := RecordID("Anthropic/pdf-support.md", 3); got != "Anthropic/pdf-support.md_3" {
		t.Errorf("unexpected record id %q", got)
	}
}

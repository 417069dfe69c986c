package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"rag-prep/internal/app"
	"rag-prep/internal/config"
	"rag-prep/internal/dataset"
)

func newTestDeps() app.CoreDeps {
	return app.CoreDeps{
		Config: config.Config{HFDataset: "rag-datasets/rag-mini-wikipedia"},
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunDownloadsDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var row map[string]json.RawMessage
		switch q.Get("config") {
		case "text-corpus":
			row = map[string]json.RawMessage{"passage": json.RawMessage(`"Uruguay is a country."`)}
		case "question-answer":
			row = map[string]json.RawMessage{
				"question": json.RawMessage(`"Where is Uruguay?"`),
				"answer":   json.RawMessage(`"South America"`),
			}
		default:
			http.NotFound(w, r)
			return
		}
		page := dataset.RowsPage{NumRowsTotal: 1, Rows: []dataset.Row{{RowIdx: 0, Row: row}}}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := dataset.NewClient()
	client.BaseURL = srv.URL

	dir := t.TempDir()
	opts := options{
		passagesOut: filepath.Join(dir, "passages.json"),
		qaOut:       filepath.Join(dir, "question_answer.json"),
	}
	if err := run(context.Background(), newTestDeps(), client, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var passages []dataset.Passage
	readJSON(t, opts.passagesOut, &passages)
	if len(passages) != 1 || passages[0].Text != "Uruguay is a country." {
		t.Errorf("unexpected passages: %+v", passages)
	}

	var pairs []dataset.QAPair
	readJSON(t, opts.qaOut, &pairs)
	if len(pairs) != 1 || pairs[0].Answer != "South America" {
		t.Errorf("unexpected qa pairs: %+v", pairs)
	}
}

func TestRunConvertsFlatQAFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cat_Qs.txt")
	content := "Q: Do cats land on their feet?\nA: Usually.\n"
	if err := os.WriteFile(in, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := options{
		skipDataset: true,
		flatQAIn:    in,
		flatQAOut:   filepath.Join(dir, "cat_Qs.json"),
	}
	if err := run(context.Background(), newTestDeps(), dataset.NewClient(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var pairs []dataset.FlatQA
	readJSON(t, opts.flatQAOut, &pairs)
	if len(pairs) != 1 || pairs[0].Question != "Do cats land on their feet?" {
		t.Errorf("unexpected pairs: %+v", pairs)
	}
}

func TestRunMissingFlatQAFile(t *testing.T) {
	opts := options{
		skipDataset: true,
		flatQAIn:    filepath.Join(t.TempDir(), "absent.txt"),
		flatQAOut:   filepath.Join(t.TempDir(), "out.json"),
	}
	if err := run(context.Background(), newTestDeps(), dataset.NewClient(), opts); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("invalid JSON in %s: %v", path, err)
	}
}

package loader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadReadsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("notes.md", "  # Notes\n\nSome text.\n\n")
	write("sub/plain.txt", "plain text")
	write("image.png", "binary junk")

	docs, err := Load(dir, discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	byPath := map[string]string{}
	for _, d := range docs {
		byPath[d.Path] = d.Text
	}
	if byPath["notes.md"] != "# Notes\n\nSome text." {
		t.Errorf("expected stripped markdown content, got %q", byPath["notes.md"])
	}
	if byPath[filepath.Join("sub", "plain.txt")] != "plain text" {
		t.Errorf("expected nested txt to load, got %v", byPath)
	}
}

func TestLoadDropsEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.md"), []byte("  \n\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := Load(dir, discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected whitespace-only file to be dropped, got %d docs", len(docs))
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), discard()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

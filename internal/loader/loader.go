// Package loader reads local documents for ingestion.
package loader

import (
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is one loaded file, stripped of leading and trailing whitespace.
// Path is relative to the load root and doubles as the document name in
// vector record ids.
type Document struct {
	Path string
	Text string
}

// Load walks dir and returns the text of every .md, .txt and .pdf file,
// sorted by path. Unreadable files are logged and skipped; documents that
// are empty after stripping are dropped.
func Load(dir string, log *slog.Logger) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".md", ".txt", ".pdf":
		default:
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable file", "path", path, "err", err)
			return nil
		}

		text := string(content)
		if ext == ".pdf" {
			text, err = extractPDF(content)
			if err != nil {
				log.Warn("skipping pdf with failed extraction", "path", path, "err", err)
				return nil
			}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		docs = append(docs, Document{Path: rel, Text: text})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

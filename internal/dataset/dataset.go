// Package dataset converts the rag-mini-wikipedia corpus and flat Q/A files
// into the JSON shapes the rest of the pipeline consumes.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// Passage is one corpus entry of passages.json.
type Passage struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// QAPair is one entry of question_answer.json.
type QAPair struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FlatQA is one pair parsed from a "Q:/A:" flat file. Flat-file pairs carry
// no id.
type FlatQA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// WriteJSON writes v as two-space-indented JSON to path.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

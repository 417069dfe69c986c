package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the public HuggingFace datasets-server endpoint.
	DefaultBaseURL = "https://datasets-server.huggingface.co"

	// pageLength is the maximum row count the rows API serves per request.
	pageLength = 100
)

// Client reads dataset rows from the HuggingFace datasets-server API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client against the public datasets-server.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Row is one dataset row; the fields stay raw until a caller maps them.
type Row struct {
	RowIdx int                        `json:"row_idx"`
	Row    map[string]json.RawMessage `json:"row"`
}

// RowsPage is one page of the rows API response.
type RowsPage struct {
	Rows         []Row `json:"rows"`
	NumRowsTotal int   `json:"num_rows_total"`
}

// Rows fetches one page of rows for a dataset config and split.
func (c *Client) Rows(ctx context.Context, dataset, config, split string, offset, length int) (*RowsPage, error) {
	q := url.Values{}
	q.Set("dataset", dataset)
	q.Set("config", config)
	q.Set("split", split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(length))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/rows?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datasets-server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("datasets-server returned %d for %s/%s/%s: %s", resp.StatusCode, dataset, config, split, body)
	}

	var page RowsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode rows page: %w", err)
	}
	return &page, nil
}

// AllRows pages through the full split, in row order.
func (c *Client) AllRows(ctx context.Context, dataset, config, split string) ([]Row, error) {
	var rows []Row
	for offset := 0; ; offset += pageLength {
		page, err := c.Rows(ctx, dataset, config, split, offset, pageLength)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Rows...)
		if len(page.Rows) == 0 || len(rows) >= page.NumRowsTotal {
			return rows, nil
		}
	}
}

// DownloadPassages fetches the text-corpus split and numbers the passages
// sequentially from zero.
func DownloadPassages(ctx context.Context, c *Client, dataset string) ([]Passage, error) {
	rows, err := c.AllRows(ctx, dataset, "text-corpus", "passages")
	if err != nil {
		return nil, err
	}
	passages := make([]Passage, 0, len(rows))
	for i, row := range rows {
		text, err := stringField(row, "passage")
		if err != nil {
			return nil, err
		}
		passages = append(passages, Passage{ID: i, Text: text})
	}
	return passages, nil
}

// DownloadQuestionAnswers fetches the question-answer test split.
func DownloadQuestionAnswers(ctx context.Context, c *Client, dataset string) ([]QAPair, error) {
	rows, err := c.AllRows(ctx, dataset, "question-answer", "test")
	if err != nil {
		return nil, err
	}
	pairs := make([]QAPair, 0, len(rows))
	for i, row := range rows {
		question, err := stringField(row, "question")
		if err != nil {
			return nil, err
		}
		answer, err := stringField(row, "answer")
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, QAPair{ID: i, Question: question, Answer: answer})
	}
	return pairs, nil
}

func stringField(row Row, field string) (string, error) {
	raw, ok := row.Row[field]
	if !ok {
		return "", fmt.Errorf("row %d has no %q field", row.RowIdx, field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("row %d: field %q is not a string: %w", row.RowIdx, field, err)
	}
	return s, nil
}

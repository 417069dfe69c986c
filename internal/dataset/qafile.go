package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseQAFile reads a flat text file of alternating "Q: <question>" and
// "A: <answer>" lines and pairs them up in order. Blank lines are skipped.
// A trailing question without an answer is an error.
func ParseQAFile(r io.Reader) ([]FlatQA, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read qa file: %w", err)
	}
	if len(lines)%2 != 0 {
		return nil, fmt.Errorf("qa file has %d non-empty lines; expected alternating question/answer pairs", len(lines))
	}

	pairs := make([]FlatQA, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		pairs = append(pairs, FlatQA{
			Question: strings.TrimSpace(strings.TrimPrefix(lines[i], "Q:")),
			Answer:   strings.TrimSpace(strings.TrimPrefix(lines[i+1], "A:")),
		})
	}
	return pairs, nil
}

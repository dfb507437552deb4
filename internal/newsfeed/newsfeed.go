// Package newsfeed loads batches of news documents from JSONL files for the
// one-shot extract mode.
package newsfeed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/civicsignal/augur/internal/logging"
	"github.com/civicsignal/augur/pkg/augur"
)

type item struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Text string `json:"text"`
}

// LoadFromJSONL loads documents from a JSONL file, one JSON object per line.
// Malformed lines and lines without an id are skipped with a warning; a file
// with no valid documents is an error.
func LoadFromJSONL(path string) ([]augur.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	logger := logging.New("newsfeed")

	var docs []augur.Document
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var it item
		if err := json.Unmarshal([]byte(line), &it); err != nil {
			logger.Warn("skipping malformed line", "path", path, "line", i+1, "error", err)
			continue
		}
		if it.ID == "" {
			logger.Warn("skipping document without id", "path", path, "line", i+1)
			continue
		}
		docs = append(docs, augur.Document{ID: it.ID, Date: it.Date, Text: it.Text})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found in %s", path)
	}
	return docs, nil
}

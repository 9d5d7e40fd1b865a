package ingestion

import "strings"

const (
	chunkSize    = 500
	chunkOverlap = 50
)

// Chunk splits text into overlapping windows of whitespace-separated tokens.
// Consecutive chunks share chunkOverlap tokens; empty or whitespace-only
// text yields no chunks. The split is deterministic, so re-ingesting the
// same document always produces the same chunk sequence.
func Chunk(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(tokens); start += chunkSize - chunkOverlap {
		end := start + chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
	}
	return chunks
}

package ingestion

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// words returns n distinct whitespace-separated tokens.
func words(n int) []string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("w%d", i)
	}
	return tokens
}

func TestChunkEmpty(t *testing.T) {
	assert.Nil(t, Chunk(""))
	assert.Nil(t, Chunk("   \n\t  "))
}

func TestChunkSingleWindow(t *testing.T) {
	tokens := words(chunkSize - chunkOverlap)
	chunks := Chunk(strings.Join(tokens, " "))

	require.Len(t, chunks, 1)
	assert.Equal(t, strings.Join(tokens, " "), chunks[0])
}

func TestChunkNormalizesWhitespace(t *testing.T) {
	chunks := Chunk("alpha\n\nbeta\t gamma  delta")

	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha beta gamma delta", chunks[0])
}

func TestChunkOverlap(t *testing.T) {
	tokens := words(1000)
	chunks := Chunk(strings.Join(tokens, " "))

	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Join(tokens[0:500], " "), chunks[0])
	assert.Equal(t, strings.Join(tokens[450:950], " "), chunks[1])
	assert.Equal(t, strings.Join(tokens[900:1000], " "), chunks[2])

	// Consecutive chunks share the trailing chunkOverlap tokens.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	assert.Equal(t, first[len(first)-chunkOverlap:], second[:chunkOverlap])
}

func TestChunkExactWindow(t *testing.T) {
	// A document of exactly one window still steps once more, producing the
	// trailing overlap as its own chunk.
	tokens := words(chunkSize)
	chunks := Chunk(strings.Join(tokens, " "))

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Join(tokens, " "), chunks[0])
	assert.Equal(t, strings.Join(tokens[chunkSize-chunkOverlap:], " "), chunks[1])
}

func TestChunkDeterministic(t *testing.T) {
	text := strings.Join(words(1234), " ")
	assert.Equal(t, Chunk(text), Chunk(text))
}

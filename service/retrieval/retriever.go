package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
)

// DefaultK is how many chunks a query pulls when the caller does not say.
const DefaultK = 5

// Mode selects how the answer generator gathers context.
type Mode int

const (
	// ModeVector ranks stored chunk embeddings against the query embedding.
	ModeVector Mode = iota

	// ModeFallback reads raw material text straight from blob storage,
	// for courses whose vector store is empty or unusable.
	ModeFallback
)

// SearchStore is the slice of the embedding store the retriever needs.
type SearchStore interface {
	SimilaritySearch(ctx context.Context, courseID uuid.UUID, vec []float32, k int) ([]model.VectorEmbedding, error)
	Statistics(ctx context.Context, courseID uuid.UUID) (*model.EmbeddingStats, error)
}

// Embedder produces the query vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type GroupChunk struct {
	Text  string `json:"text"`
	Index int    `json:"chunk_index"`
}

// MaterialGroup collects the retrieved chunks that came from one material.
type MaterialGroup struct {
	MaterialID uuid.UUID    `json:"material_id"`
	FileName   string       `json:"file_name"`
	FileType   string       `json:"file_type"`
	Chunks     []GroupChunk `json:"chunks"`
}

// Result is a retrieval outcome: the flat chunk texts in similarity order,
// plus the same chunks grouped by source material.
type Result struct {
	Query       string          `json:"query"`
	Chunks      []string        `json:"chunks"`
	Materials   []MaterialGroup `json:"materials_used"`
	TotalChunks int             `json:"total_chunks"`
}

type Retriever struct {
	store    SearchStore
	embedder Embedder
}

func NewRetriever(store SearchStore, embedder Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve embeds the query and returns the k closest chunks in the course.
// Groups appear in the order their material first shows up in the ranking;
// chunks inside a group follow their original chunk index. An empty result
// is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, courseID uuid.UUID, k int) (*Result, error) {
	if k <= 0 {
		k = DefaultK
	}

	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %v", err)
	}

	rows, err := r.store.SimilaritySearch(ctx, courseID, vec, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %v", err)
	}
	slog.Info("retrieved chunks for query", "course_id", courseID, "chunks", len(rows))

	result := &Result{
		Query:       query,
		Chunks:      make([]string, 0, len(rows)),
		TotalChunks: len(rows),
	}
	groupIndex := make(map[uuid.UUID]int)
	for _, row := range rows {
		result.Chunks = append(result.Chunks, row.ChunkText)

		gi, ok := groupIndex[row.MaterialID]
		if !ok {
			group := MaterialGroup{MaterialID: row.MaterialID}
			if row.Material != nil {
				group.FileName = row.Material.FileName
				group.FileType = string(row.Material.FileType)
			}
			result.Materials = append(result.Materials, group)
			gi = len(result.Materials) - 1
			groupIndex[row.MaterialID] = gi
		}
		result.Materials[gi].Chunks = append(result.Materials[gi].Chunks, GroupChunk{
			Text:  row.ChunkText,
			Index: row.ChunkIndex,
		})
	}

	for i := range result.Materials {
		chunks := result.Materials[i].Chunks
		sort.Slice(chunks, func(a, b int) bool {
			return chunks[a].Index < chunks[b].Index
		})
	}
	return result, nil
}

// Stats reports a course's embedding coverage, for callers that must tell
// "no materials at all" from "nothing matched".
func (r *Retriever) Stats(ctx context.Context, courseID uuid.UUID) (*model.EmbeddingStats, error) {
	return r.store.Statistics(ctx, courseID)
}

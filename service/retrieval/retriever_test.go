package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearchStore struct {
	rows      []model.VectorEmbedding
	err       error
	gotCourse uuid.UUID
	gotK      int
}

func (f *fakeSearchStore) SimilaritySearch(_ context.Context, courseID uuid.UUID, _ []float32, k int) ([]model.VectorEmbedding, error) {
	f.gotCourse = courseID
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeSearchStore) Statistics(_ context.Context, _ uuid.UUID) (*model.EmbeddingStats, error) {
	return &model.EmbeddingStats{TotalEmbeddings: 7, TotalMaterials: 2}, nil
}

type fakeQueryEmbedder struct {
	vec []float32
	err error
}

func (f *fakeQueryEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

func row(materialID uuid.UUID, material *model.CourseMaterial, text string, index int) model.VectorEmbedding {
	return model.VectorEmbedding{
		ID:         uuid.New(),
		MaterialID: materialID,
		ChunkText:  text,
		ChunkIndex: index,
		Material:   material,
	}
}

func TestRetrieveGroupsByMaterial(t *testing.T) {
	lecture := &model.CourseMaterial{FileName: "lecture.pdf", FileType: model.FileTypePDF}
	notes := &model.CourseMaterial{FileName: "notes.txt", FileType: model.FileTypeText}
	lectureID, notesID := uuid.New(), uuid.New()

	store := &fakeSearchStore{rows: []model.VectorEmbedding{
		row(lectureID, lecture, "lecture chunk two", 2),
		row(notesID, notes, "notes chunk zero", 0),
		row(lectureID, lecture, "lecture chunk one", 1),
	}}
	r := NewRetriever(store, &fakeQueryEmbedder{vec: []float32{0.5}})

	courseID := uuid.New()
	result, err := r.Retrieve(context.Background(), "what is covered?", courseID, 3)
	require.NoError(t, err)

	assert.Equal(t, courseID, store.gotCourse)
	assert.Equal(t, "what is covered?", result.Query)
	assert.Equal(t, 3, result.TotalChunks)

	// Flat chunks keep similarity order.
	assert.Equal(t, []string{"lecture chunk two", "notes chunk zero", "lecture chunk one"}, result.Chunks)

	// Groups appear in first-appearance order; chunks inside a group follow
	// their original chunk index.
	require.Len(t, result.Materials, 2)
	assert.Equal(t, lectureID, result.Materials[0].MaterialID)
	assert.Equal(t, "lecture.pdf", result.Materials[0].FileName)
	assert.Equal(t, ".pdf", result.Materials[0].FileType)
	require.Len(t, result.Materials[0].Chunks, 2)
	assert.Equal(t, 1, result.Materials[0].Chunks[0].Index)
	assert.Equal(t, 2, result.Materials[0].Chunks[1].Index)

	assert.Equal(t, notesID, result.Materials[1].MaterialID)
	assert.Equal(t, "notes.txt", result.Materials[1].FileName)
}

func TestRetrieveEmptyResult(t *testing.T) {
	r := NewRetriever(&fakeSearchStore{}, &fakeQueryEmbedder{vec: []float32{0.5}})

	result, err := r.Retrieve(context.Background(), "anything", uuid.New(), 5)
	require.NoError(t, err)

	assert.Zero(t, result.TotalChunks)
	assert.Empty(t, result.Chunks)
	assert.Empty(t, result.Materials)
}

func TestRetrieveDefaultK(t *testing.T) {
	store := &fakeSearchStore{}
	r := NewRetriever(store, &fakeQueryEmbedder{vec: []float32{0.5}})

	_, err := r.Retrieve(context.Background(), "q", uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultK, store.gotK)
}

func TestRetrieveEmbedError(t *testing.T) {
	r := NewRetriever(&fakeSearchStore{}, &fakeQueryEmbedder{err: errors.New("api down")})

	_, err := r.Retrieve(context.Background(), "q", uuid.New(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed query")
}

func TestRetrieveSearchError(t *testing.T) {
	r := NewRetriever(&fakeSearchStore{err: errors.New("db gone")}, &fakeQueryEmbedder{vec: []float32{0.5}})

	_, err := r.Retrieve(context.Background(), "q", uuid.New(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity search failed")
}

func TestStats(t *testing.T) {
	r := NewRetriever(&fakeSearchStore{}, &fakeQueryEmbedder{})

	stats, err := r.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.TotalEmbeddings)
	assert.Equal(t, int64(2), stats.TotalMaterials)
}

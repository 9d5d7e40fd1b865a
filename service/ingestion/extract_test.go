package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobStore struct {
	objects map[string][]byte
	err     error
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func TestExtractorPlainText(t *testing.T) {
	e := NewExtractor(&fakeBlobStore{objects: map[string][]byte{
		"courses/c/materials/m/notes.txt": []byte("lecture one covers recursion"),
	}})

	text, err := e.Text(context.Background(), "courses/c/materials/m/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "lecture one covers recursion", text)
}

func TestExtractorMarkdown(t *testing.T) {
	e := NewExtractor(&fakeBlobStore{objects: map[string][]byte{
		"syllabus.md": []byte("# Week 1\n\nIntroduction"),
	}})

	text, err := e.Text(context.Background(), "syllabus.md")
	require.NoError(t, err)
	assert.Equal(t, "# Week 1\n\nIntroduction", text)
}

func TestExtractorLatin1Fallback(t *testing.T) {
	// "café" encoded as ISO 8859-1: 0xE9 is not valid UTF-8 on its own.
	e := NewExtractor(&fakeBlobStore{objects: map[string][]byte{
		"old.txt": {'c', 'a', 'f', 0xE9},
	}})

	text, err := e.Text(context.Background(), "old.txt")
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestExtractorUnsupportedType(t *testing.T) {
	e := NewExtractor(&fakeBlobStore{objects: map[string][]byte{
		"slides.docx": []byte("irrelevant"),
	}})

	_, err := e.Text(context.Background(), "slides.docx")
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureExtraction, failure.Kind)
	assert.Contains(t, err.Error(), ".docx")
}

func TestExtractorBlobError(t *testing.T) {
	e := NewExtractor(&fakeBlobStore{err: errors.New("bucket down")})

	_, err := e.Text(context.Background(), "notes.txt")
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureExtraction, failure.Kind)
}

func TestExtractorCorruptPDF(t *testing.T) {
	e := NewExtractor(&fakeBlobStore{objects: map[string][]byte{
		"broken.pdf": []byte("this is not a pdf"),
	}})

	_, err := e.Text(context.Background(), "broken.pdf")
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailureExtraction, failure.Kind)
}

func TestDecodeTextUTF8(t *testing.T) {
	text, err := decodeText([]byte("héllo wörld"))
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", text)
}

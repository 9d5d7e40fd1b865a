package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// BlobStore is the slice of the blob client the extractor needs.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Extractor downloads material blobs and extracts their plain text. The
// extension on the object key decides the decoder.
type Extractor struct {
	blobs BlobStore
}

func NewExtractor(blobs BlobStore) *Extractor {
	return &Extractor{blobs: blobs}
}

func (e *Extractor) Text(ctx context.Context, objectKey string) (string, error) {
	data, err := e.blobs.Get(ctx, objectKey)
	if err != nil {
		return "", newFailure(FailureExtraction, "failed to fetch document %s: %v", objectKey, err)
	}

	switch ext := strings.ToLower(filepath.Ext(objectKey)); ext {
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", newFailure(FailureExtraction, "could not extract text from %s: %v", objectKey, err)
		}
		return text, nil
	case ".txt", ".md":
		text, err := decodeText(data)
		if err != nil {
			return "", newFailure(FailureExtraction, "could not decode text file %s: %v", objectKey, err)
		}
		return text, nil
	default:
		return "", newFailure(FailureExtraction, "unsupported file type for text extraction: %s", ext)
	}
}

// extractPDF pulls text page by page. An unreadable page is skipped rather
// than failing the document; only a document with no readable text at all
// is an error.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %v", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := extractPage(reader.Page(i))
		if err != nil {
			slog.Warn("failed to extract text from pdf page, skipping", "page", i, "err", err)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("no text could be extracted from the pdf")
	}
	return text, nil
}

// extractPage wraps GetPlainText behind a recover; the pdf package panics on
// some malformed content streams.
func extractPage(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()
	if page.V.IsNull() {
		return "", errors.New("null page")
	}
	return page.GetPlainText(nil)
}

// decodeText reads a text blob as UTF-8, falling back to Latin-1 for legacy
// uploads.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

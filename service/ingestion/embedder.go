package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/Vansh983/ai-ta/utils"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	embeddingModel     = "text-embedding-3-large"
	embeddingBatchSize = 10
	embeddingTimeout   = 60 * time.Second

	// EmbeddingDimensions is the vector width of embeddingModel; the vector
	// column is declared with the same width.
	EmbeddingDimensions = 3072
)

// Embedder produces a vector for one piece of text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder embeds text with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
}

var _ Embedder = &OpenAIEmbedder{}

func NewOpenAIEmbedder(apiKey, baseURL string) (*OpenAIEmbedder, error) {
	opts := []openai.Option{
		openai.WithEmbeddingModel(embeddingModel),
		openai.WithToken(apiKey),
		openai.WithHTTPClient(utils.NewHTTPClient(utils.WithTimeout(embeddingTimeout))),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(embeddingBatchSize),
		embeddings.WithStripNewLines(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %v", err)
	}

	return &OpenAIEmbedder{embedder: embedder}, nil
}

func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embedder.EmbedQuery(ctx, text)
}

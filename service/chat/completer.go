package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vansh983/ai-ta/service/ingestion"
	"github.com/Vansh983/ai-ta/utils"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	generationModel       = "gpt-4"
	generationTemperature = 0.3
	generationMaxTokens   = 500

	completionTimeout = 120 * time.Second
)

// Completer produces a chat completion from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// OpenAICompleter generates answers with the OpenAI chat completions API.
type OpenAICompleter struct {
	llm llms.Model
}

var _ Completer = &OpenAICompleter{}

func NewOpenAICompleter(apiKey, baseURL string) (*OpenAICompleter, error) {
	opts := []openai.Option{
		openai.WithModel(generationModel),
		openai.WithToken(apiKey),
		openai.WithHTTPClient(utils.NewHTTPClient(utils.WithTimeout(completionTimeout))),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %v", err)
	}
	return &OpenAICompleter{llm: llm}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", &ingestion.Failure{Kind: ingestion.FailureGeneration, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ingestion.Failure{Kind: ingestion.FailureGeneration, Err: errors.New("empty completion response")}
	}
	return resp.Choices[0].Content, nil
}

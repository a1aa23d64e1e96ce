package api

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultModel        = "gpt-4o-mini"
	DefaultSystemPrompt = "You are the FAQ assistant. Answer concisely in Markdown. " +
		"If you do not know the answer, say that the knowledge base has nothing on it."
)

// OpenAI answers questions straight from an OpenAI-compatible chat
// completions endpoint. It has no knowledge base, so the CSV operations
// return ErrUnsupported.
type OpenAI struct {
	client       *openai.Client
	model        string
	systemPrompt string
	logger       *zap.Logger
}

func NewOpenAI(apiKey, baseURL, model string, logger *zap.Logger) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		systemPrompt: DefaultSystemPrompt,
		logger:       logger,
	}
}

// Ask adapts the completion stream into a plain byte stream of answer text.
func (o *OpenAI) Ask(ctx context.Context, question string) (io.ReadCloser, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Stream: true,
	}

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, convertOpenAIError(err)
	}

	pr, pw := io.Pipe()
	go func() {
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				pw.Close()
				return
			}
			if err != nil {
				o.logger.Debug("completion stream ended with error", zap.Error(err))
				pw.CloseWithError(convertOpenAIError(err))
				return
			}
			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if _, err := io.WriteString(pw, choice.Delta.Content); err != nil {
					// reader went away
					return
				}
			}
		}
	}()
	return pr, nil
}

func (o *OpenAI) UploadCSV(context.Context, string, io.Reader) (*UploadResult, error) {
	return nil, ErrUnsupported
}

func (o *OpenAI) DeleteCSV(context.Context) (*Result, error) {
	return nil, ErrUnsupported
}

func (o *OpenAI) ReloadVectorDB(context.Context) (*Result, error) {
	return nil, ErrUnsupported
}

func convertOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &Error{StatusCode: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		detail := ""
		if reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
		return &Error{StatusCode: reqErr.HTTPStatusCode, Detail: detail}
	}
	return err
}

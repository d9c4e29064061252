package llm

import (
	"context"
	"errors"

	"coursehub/backend/internal/model"
	"coursehub/backend/internal/stream"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider returns a provider backed by the OpenAI SDK. baseURL may
// point at any OpenAI-compatible endpoint.
func NewOpenAIProvider(baseURL, apiKey, defaultModel string, opts ...option.RequestOption) LLMProvider {
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}
	return &openAIProvider{
		client: openai.NewClient(append(base, opts...)...),
		model:  defaultModel,
	}
}

func (p *openAIProvider) GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamResponse) error {
	defer close(ch)

	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelName),
		Messages: toOpenAIMessages(req.Messages),
	}

	s := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer s.Close()

	for s.Next() {
		chunk := s.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		select {
		case ch <- StreamResponse{Content: chunk.Choices[0].Delta.Content}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := s.Err(); err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = apiErr.RawJSON()
			}
			return &stream.RequestFailedError{Status: apiErr.StatusCode, Message: msg}
		}
		return err
	}

	select {
	case ch <- StreamResponse{Done: true}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func toOpenAIMessages(msgs []model.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

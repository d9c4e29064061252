package llm

import (
	"context"
	"strings"

	"coursehub/backend/internal/model"
	"coursehub/backend/internal/stream"
)

// StreamResponse is a LOCAL type for the llm package: one text fragment, or
// the end-of-stream marker.
type StreamResponse struct {
	Content string
	Done    bool
}

// GenerateRequest is a chat completion request.
type GenerateRequest struct {
	Model    string              `json:"model"`
	Messages []model.ChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

// LLMProvider defines the interface for interacting with a remote text-generation service.
//
// GenerateStream sends every text fragment to ch in arrival order and closes
// ch before returning, whatever the outcome.
type LLMProvider interface {
	GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamResponse) error
}

// Complete runs req on p, passing each fragment to onDelta (which may be nil),
// and returns the accumulated reply with surrounding whitespace removed. A
// clean stream without text fails with stream.ErrEmptyResponse. On failure
// the partial text is returned with the error.
func Complete(ctx context.Context, p LLMProvider, req *GenerateRequest, onDelta func(string)) (string, error) {
	ch := make(chan StreamResponse)
	errc := make(chan error, 1)
	go func() {
		errc <- p.GenerateStream(ctx, req, ch)
	}()

	var full strings.Builder
	for chunk := range ch {
		if chunk.Content == "" {
			continue
		}
		full.WriteString(chunk.Content)
		if onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	if err := <-errc; err != nil {
		return full.String(), err
	}
	text := strings.TrimSpace(full.String())
	if text == "" {
		return "", stream.ErrEmptyResponse
	}
	return text, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"coursehub/backend/internal/stream"
)

type sseProvider struct {
	client *http.Client
	url    string
	apiKey string
	model  string
}

// NewSSEProvider returns a provider that POSTs chat requests to url and
// decodes the `data:` line stream it answers with. An empty req.Model falls
// back to defaultModel.
func NewSSEProvider(url, apiKey, defaultModel string, client *http.Client) LLMProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &sseProvider{client: client, url: url, apiKey: apiKey, model: defaultModel}
}

func (p *sseProvider) GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamResponse) error {
	defer close(ch)

	body := *req
	body.Stream = true
	if body.Model == "" {
		body.Model = p.model
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	dec, err := stream.Open(resp)
	if err != nil {
		return err
	}

	for {
		delta, err := dec.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		select {
		case ch <- StreamResponse{Content: delta}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case ch <- StreamResponse{Done: true}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

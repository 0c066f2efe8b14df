package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

type CohereCompleter struct {
	client *cohereclient.Client
	model  string
}

func NewCohereCompleter(apiKey, model string) *CohereCompleter {
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return &CohereCompleter{client: client, model: model}
}

func (c *CohereCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:  prompt,
		Model:    cohere.String(c.model),
		Preamble: cohere.String(system),
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("cohere chat returned empty response")
	}
	return resp.Text, nil
}

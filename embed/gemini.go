// Google Gemini embedder implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Request/response format for the Gemini embedContent API

package embed

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the embedding model used when none is configured.
const DefaultGeminiModel = "text-embedding-004"

// GeminiEmbedder implements Embedder against the Gemini API.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	initErr error // stored client initialization error, returned on first use
}

// NewGeminiEmbedder creates a new Gemini embedder.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiEmbedder(apiKey, model string) *GeminiEmbedder {
	if model == "" {
		model = DefaultGeminiModel
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &GeminiEmbedder{
			model:   model,
			initErr: fmt.Errorf("failed to initialize Gemini client: %w", err),
		}
	}
	return &GeminiEmbedder{client: client, model: model}
}

// Name returns the provider name.
func (e *GeminiEmbedder) Name() string {
	return "gemini"
}

// Embed produces a vector for the given text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.initErr != nil {
		return nil, e.initErr
	}
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding response contained no values")
	}
	return resp.Embeddings[0].Values, nil
}

var _ Embedder = (*GeminiEmbedder)(nil)

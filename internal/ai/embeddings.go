package ai

import (
	"context"
	"fmt"

	"seo-content-ops/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenerateEmbedding returns an embedding vector for the given text
// using Google Generative AI (text-embedding-004).
func GenerateEmbedding(ctx context.Context, cfg *config.Config, text string) ([]float32, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.EmbeddingModel(cfg.GoogleEmbeddingsModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}

	// genai SDK returns []float32 for Embedding.Values
	return resp.Embedding.Values, nil
}

// GenerateEmbeddings embeds a batch of texts with a single client.
// Failed items abort the batch so callers can retry the whole chunk set.
func GenerateEmbeddings(ctx context.Context, cfg *config.Config, texts []string) ([][]float32, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.EmbeddingModel(cfg.GoogleEmbeddingsModel)
	batch := model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

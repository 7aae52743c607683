package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	genaiopt "google.golang.org/api/option"
)

// Gemini embeds text through Google's generative AI embedding models.
type Gemini struct {
	client *genai.Client
	model  string
	dim    int
}

func NewGemini(apiKey, model string, dim int) (*Gemini, error) {
	client, err := genai.NewClient(context.Background(), genaiopt.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, dim: dim}, nil
}

func (e *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	model := e.client.EmbeddingModel(e.model)
	rsp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, errors.New("no embedding in gemini response")
	}
	return rsp.Embedding.Values, nil
}

func (e *Gemini) Dimension() int { return e.dim }

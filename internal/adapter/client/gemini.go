package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"support-console/internal/domain/entity"
)

// GeminiClient is the Vertex AI alternative to the Groq adapter, for
// deployments that keep model traffic inside Google Cloud.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, projectID, location string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client}, nil
}

func NewGeminiClientFromClient(c *genai.Client) *GeminiClient {
	return &GeminiClient{client: c}
}

// Complete flattens the role-tagged messages into one prompt; the genai SDK
// carries the system text as a SystemInstruction when one is present.
func (g *GeminiClient) Complete(ctx context.Context, req entity.CompletionRequest) (*entity.Completion, error) {
	var system string
	var parts []string
	for _, m := range req.Messages {
		if m.Role == entity.RoleSystem && system == "" {
			system = m.Content
			continue
		}
		parts = append(parts, m.Content)
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(strings.Join(parts, "\n\n")), config)
	if err != nil {
		return nil, fmt.Errorf("gemini completion: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("gemini completion returned no candidates")
	}

	tokens := 0
	if result.UsageMetadata != nil {
		tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	return &entity.Completion{
		Content:    result.Text(),
		TokenCount: tokens,
		Model:      req.Model,
	}, nil
}

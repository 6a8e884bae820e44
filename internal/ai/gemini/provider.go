package gemini

import (
	"context"
	"fmt"

	"github.com/urbanosolucoes/licitahub/internal/config"
	"github.com/urbanosolucoes/licitahub/pkg/models"
	"google.golang.org/genai"
)

// Provider implements models.AIProvider using Google's Gemini API.
// PDF documents are passed inline as request parts, so individual uploads are
// bounded by the API's inline-data limit (uploads are capped at 25MB upstream).
type Provider struct {
	client *genai.Client
	model  string
}

func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: cfg.Model}, nil
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Documents)+1)
	for _, doc := range req.Documents {
		parts = append(parts, genai.NewPartFromBytes(doc.Data, "application/pdf"))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return text, nil
}

var _ models.AIProvider = (*Provider)(nil)

package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/abelbrown/lens/internal/logging"
)

const defaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of *genai.Models we call.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider answers questions with Gemini directly, skipping the
// backend's QA endpoint.
type GeminiProvider struct {
	models    contentGenerator
	model     string
	maxTokens int32
}

// NewGeminiProvider creates a Gemini provider. An empty apiKey yields a
// provider that is not available.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	g := &GeminiProvider{model: model, maxTokens: 1024}
	if apiKey == "" {
		return g, nil
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g.models = cli.Models
	return g, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Available() bool { return g.models != nil }

func (g *GeminiProvider) Answer(ctx context.Context, q Question) (Response, error) {
	if !g.Available() {
		return Response{}, errors.New("gemini provider not configured")
	}

	prompt := buildPrompt(q)
	logging.Debug("Gemini request starting", "model", g.model, "bytes", len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return Response{}, fmt.Errorf("generate: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return Response{}, errors.New("gemini returned no text")
	}
	return Response{Content: text, Model: g.model}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

package interpreter

import (
	"context"
	"fmt"
	"strings"
	"time"

	generativelanguage "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"github.com/andresuchdata/stockbin/internal/config"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	defaultModel       = "gemini-1.5-flash"
	jsonMimeType       = "application/json"
)

// GeminiModel calls the Generative Language API
type GeminiModel struct {
	client  *generativelanguage.GenerativeClient
	model   string
	timeout time.Duration
}

// NewModel returns nil without error when no model credentials are configured.
func NewModel(ctx context.Context, cfg config.AIConfig) (Model, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	m, err := NewGeminiModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func NewGeminiModel(ctx context.Context, cfg config.AIConfig) (*GeminiModel, error) {
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := generativelanguage.NewGenerativeClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create generative language client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiModel{client: client, model: modelName(cfg.Model), timeout: timeout}, nil
}

// clientOptions prefers service account credentials over an API key.
func clientOptions(ctx context.Context, cfg config.AIConfig) ([]option.ClientOption, error) {
	if cfg.CredentialsJSON != "" {
		jwtConfig, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse model credentials: %w", err)
		}
		return []option.ClientOption{option.WithTokenSource(jwtConfig.TokenSource(ctx))}, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model credentials must be provided")
	}
	return []option.ClientOption{option.WithAPIKey(cfg.APIKey)}, nil
}

// modelName returns the resource name the API expects, e.g. models/gemini-1.5-flash.
func modelName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultModel
	}
	if strings.HasPrefix(name, "models/") || strings.HasPrefix(name, "tunedModels/") {
		return name
	}
	return "models/" + name
}

func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.GenerateContent(ctx, generateRequest(g.model, prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return candidateText(resp), nil
}

func (g *GeminiModel) Close() error {
	return g.client.Close()
}

func generateRequest(model, prompt string) *generativelanguagepb.GenerateContentRequest {
	return &generativelanguagepb.GenerateContentRequest{
		Model: model,
		Contents: []*generativelanguagepb.Content{{
			Role: "user",
			Parts: []*generativelanguagepb.Part{{
				Data: &generativelanguagepb.Part_Text{Text: prompt},
			}},
		}},
		GenerationConfig: &generativelanguagepb.GenerationConfig{
			ResponseMimeType: jsonMimeType,
		},
	}
}

// candidateText joins the text parts of the first candidate that has content.
func candidateText(resp *generativelanguagepb.GenerateContentResponse) string {
	var b strings.Builder
	for _, c := range resp.GetCandidates() {
		if c.GetContent() == nil {
			continue
		}
		for _, p := range c.GetContent().GetParts() {
			b.WriteString(p.GetText())
		}
		break
	}
	return b.String()
}

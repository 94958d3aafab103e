package interpreter

import (
	"context"
	"testing"

	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelName(t *testing.T) {
	tests := map[string]string{
		"":                         "models/gemini-1.5-flash",
		"gemini-1.5-pro":           "models/gemini-1.5-pro",
		" models/gemini-2.0-flash": "models/gemini-2.0-flash",
		"tunedModels/stock-bot":    "tunedModels/stock-bot",
	}
	for in, want := range tests {
		assert.Equal(t, want, modelName(in), in)
	}
}

func TestClientOptions(t *testing.T) {
	ctx := context.Background()

	opts, err := clientOptions(ctx, config.AIConfig{APIKey: "key"})
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	_, err = clientOptions(ctx, config.AIConfig{CredentialsJSON: "{not json"})
	assert.ErrorContains(t, err, "unable to parse model credentials")

	_, err = clientOptions(ctx, config.AIConfig{})
	assert.Error(t, err)
}

func TestNewModelWithoutCredentials(t *testing.T) {
	m, err := NewModel(context.Background(), config.AIConfig{Model: "gemini-1.5-flash"})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestGenerateRequest(t *testing.T) {
	req := generateRequest("models/gemini-1.5-flash", "add 3 bolts")
	assert.Equal(t, "models/gemini-1.5-flash", req.GetModel())
	assert.Equal(t, "application/json", req.GetGenerationConfig().GetResponseMimeType())
	require.Len(t, req.GetContents(), 1)
	assert.Equal(t, "user", req.GetContents()[0].GetRole())
	require.Len(t, req.GetContents()[0].GetParts(), 1)
	assert.Equal(t, "add 3 bolts", req.GetContents()[0].GetParts()[0].GetText())
}

func textPart(s string) *generativelanguagepb.Part {
	return &generativelanguagepb.Part{Data: &generativelanguagepb.Part_Text{Text: s}}
}

func TestCandidateText(t *testing.T) {
	assert.Empty(t, candidateText(nil))

	resp := &generativelanguagepb.GenerateContentResponse{
		Candidates: []*generativelanguagepb.Candidate{
			{},
			{Content: &generativelanguagepb.Content{Parts: []*generativelanguagepb.Part{textPart(`{"action":`), textPart(`"QUERY"}`)}}},
			{Content: &generativelanguagepb.Content{Parts: []*generativelanguagepb.Part{textPart("ignored")}}},
		},
	}
	assert.Equal(t, `{"action":"QUERY"}`, candidateText(resp))
}

package interpreter

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	reply   string
	err     error
	prompts []string
}

func (m *stubModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func TestInterpretDecodesCommands(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.Command
	}{
		{
			name:  "add in a fence",
			reply: "```json\n{\"action\":\"ADD\",\"parameters\":{\"name\":\"Widget\",\"quantity\":10,\"price\":2.5,\"category\":\"Parts\"},\"reasoning\":\"adds widgets\"}\n```",
			want:  domain.AddCommand{Name: "Widget", Quantity: 10, Price: decimal.RequireFromString("2.5"), Category: "Parts", Reasoning: "adds widgets"},
		},
		{
			name:  "add on credit",
			reply: `{"action":"ADD","parameters":{"name":"Bolt","quantity":3,"price":"1.20","credit":true,"supplier":"Acme"},"reasoning":""}`,
			want:  domain.AddCommand{Name: "Bolt", Quantity: 3, Price: decimal.RequireFromString("1.20"), Credit: true, Supplier: "Acme"},
		},
		{
			name:  "update with numeric value",
			reply: `{"action":"UPDATE","parameters":{"name":"Widget","field":"packed","value":12},"reasoning":"r"}`,
			want:  domain.UpdateCommand{Name: "Widget", Field: domain.FieldPacked, Value: "12", Reasoning: "r"},
		},
		{
			name:  "query",
			reply: `{"action":"QUERY","parameters":{},"reasoning":"asks","answer":"You have 10 widgets."}`,
			want:  domain.QueryCommand{Answer: "You have 10 widgets.", Reasoning: "asks"},
		},
		{
			name:  "lowercase unknown",
			reply: `{"action":"unknown","parameters":{},"reasoning":"not a stock instruction"}`,
			want:  domain.UnknownCommand{Reasoning: "not a stock instruction"},
		},
		{
			name:  "extra parameter fields are ignored",
			reply: `{"action":"UPDATE","parameters":{"name":"Widget","field":"price","value":"3.10","confidence":0.9}}`,
			want:  domain.UpdateCommand{Name: "Widget", Field: domain.FieldPrice, Value: "3.10"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp := New(&stubModel{reply: tt.reply})
			got, err := interp.Interpret(context.Background(), "do something", Snapshot{})
			require.NoError(t, err)

			if add, ok := got.(domain.AddCommand); ok {
				want := tt.want.(domain.AddCommand)
				assert.True(t, want.Price.Equal(add.Price), "price %s", add.Price)
				add.Price, want.Price = decimal.Zero, decimal.Zero
				assert.Equal(t, want, add)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpretRejectsMalformedResponses(t *testing.T) {
	tests := map[string]string{
		"empty":                   "  ",
		"not json":                "Sure! I added the widgets.",
		"unknown action":          `{"action":"DELETE","parameters":{}}`,
		"unknown top field":       `{"action":"QUERY","answer":"x","confidence":1}`,
		"query without answer":    `{"action":"QUERY","parameters":{}}`,
		"add without params":      `{"action":"ADD"}`,
		"add without price":       `{"action":"ADD","parameters":{"name":"Widget","quantity":2}}`,
		"add zero quantity":       `{"action":"ADD","parameters":{"name":"Widget","quantity":0,"price":1}}`,
		"add negative price":      `{"action":"ADD","parameters":{"name":"Widget","quantity":1,"price":-1}}`,
		"credit no supplier":      `{"action":"ADD","parameters":{"name":"Widget","quantity":1,"price":1,"credit":true}}`,
		"update unknown field":    `{"action":"UPDATE","parameters":{"name":"Widget","field":"weight","value":"3"}}`,
		"update object value":     `{"action":"UPDATE","parameters":{"name":"Widget","field":"lost","value":{"n":1}}}`,
		"update missing value":    `{"action":"UPDATE","parameters":{"name":"Widget","field":"lost"}}`,
		"truncated json in fence": "```json\n{\"action\":\"ADD\"\n```",
	}
	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			interp := New(&stubModel{reply: reply})
			cmd, err := interp.Interpret(context.Background(), "add widgets", Snapshot{})
			require.ErrorIs(t, err, domain.ErrMalformedAIResponse)
			assert.Nil(t, cmd)
		})
	}
}

func TestInterpretWithoutModel(t *testing.T) {
	interp := New(nil)
	assert.False(t, interp.Available())

	_, err := interp.Interpret(context.Background(), "add 5 widgets", Snapshot{})
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
}

func TestInterpretModelFailure(t *testing.T) {
	interp := New(&stubModel{err: errors.New("quota exceeded")})
	_, err := interp.Interpret(context.Background(), "add 5 widgets", Snapshot{})
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)

	interp = New(&stubModel{err: context.Canceled})
	_, err = interp.Interpret(context.Background(), "add 5 widgets", Snapshot{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrAIUnavailable)
}

func TestInterpretEmptyCommand(t *testing.T) {
	model := &stubModel{}
	_, err := New(model).Interpret(context.Background(), "   ", Snapshot{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, model.prompts)
}

func TestPromptCarriesSnapshot(t *testing.T) {
	model := &stubModel{reply: `{"action":"UNKNOWN","parameters":{}}`}
	snap := Snapshot{
		Items:     []domain.StockItem{{Name: "Widget", Category: "Parts", AddedToday: 4, Price: decimal.RequireFromString("2")}},
		Suppliers: []domain.Supplier{{Name: "Acme Foods"}},
	}
	_, err := New(model).Interpret(context.Background(), "how many widgets?", snap)
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	prompt := model.prompts[0]
	assert.Contains(t, prompt, "- Widget | Parts | 4 | 2.00")
	assert.Contains(t, prompt, "- Acme Foods")
	assert.Contains(t, prompt, "Instruction: how many widgets?")
	assert.Contains(t, prompt, `"action": "ADD" | "UPDATE" | "QUERY" | "UNKNOWN"`)
}

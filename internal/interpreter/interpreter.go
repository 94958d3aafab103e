package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Model is a generative model answering one prompt with raw text.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Snapshot is the current stock and supplier state shown to the model.
type Snapshot struct {
	Items     []domain.StockItem
	Suppliers []domain.Supplier
}

type Interpreter struct {
	model    Model
	validate *validator.Validate
}

// New returns an interpreter. A nil model makes every Interpret call fail
// with domain.ErrAIUnavailable.
func New(model Model) *Interpreter {
	return &Interpreter{
		model:    model,
		validate: validator.New(),
	}
}

// Available reports whether a model is configured.
func (i *Interpreter) Available() bool {
	return i.model != nil
}

// Interpret asks the model to classify text and returns the validated command.
// Nothing is mutated here; malformed answers are dropped with ErrMalformedAIResponse.
func (i *Interpreter) Interpret(ctx context.Context, text string, snap Snapshot) (domain.Command, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: command is empty", domain.ErrValidation)
	}
	if i.model == nil {
		return nil, domain.ErrAIUnavailable
	}

	raw, err := i.model.Generate(ctx, buildPrompt(text, snap))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAIUnavailable, err)
	}

	cmd, err := decodeResponse(i.validate, raw)
	if err != nil {
		log.Warn().Err(err).Str("command", text).Msg("dropping model response")
		return nil, err
	}
	return cmd, nil
}

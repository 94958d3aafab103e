package interpreter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// modelResponse is the JSON shape the model must answer with.
type modelResponse struct {
	Action     string          `json:"action" validate:"required,oneof=ADD UPDATE QUERY UNKNOWN"`
	Parameters json.RawMessage `json:"parameters"`
	Reasoning  string          `json:"reasoning"`
	Answer     string          `json:"answer" validate:"required_if=Action QUERY"`
}

type addParameters struct {
	Name     string           `json:"name" validate:"required"`
	Quantity int              `json:"quantity" validate:"gt=0"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Category string           `json:"category"`
	Credit   bool             `json:"credit"`
	Supplier string           `json:"supplier" validate:"required_if=Credit true"`
}

type updateParameters struct {
	Name  string       `json:"name" validate:"required"`
	Field string       `json:"field" validate:"required"`
	Value scalarString `json:"value" validate:"required"`
}

// scalarString accepts a JSON string, number or boolean as text.
type scalarString string

func (s *scalarString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = scalarString(v)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err == nil || string(data) == "true" || string(data) == "false" {
		*s = scalarString(data)
		return nil
	}
	return fmt.Errorf("value must be a string or number")
}

// stripFence removes a surrounding ```json ... ``` block.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedAIResponse, fmt.Sprintf(format, args...))
}

// decodeResponse validates raw model output and converts it into a command.
func decodeResponse(validate *validator.Validate, raw string) (domain.Command, error) {
	body := stripFence(raw)
	if body == "" {
		return nil, malformed("empty response")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	var resp modelResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	resp.Action = strings.ToUpper(strings.TrimSpace(resp.Action))
	if err := validate.Struct(resp); err != nil {
		return nil, malformed("response does not match the contract: %v", err)
	}

	switch domain.CommandKind(resp.Action) {
	case domain.CommandAdd:
		var p addParameters
		if err := decodeParameters(resp.Parameters, &p); err != nil {
			return nil, err
		}
		if err := validate.Struct(p); err != nil {
			return nil, malformed("ADD parameters: %v", err)
		}
		if p.Price.IsNegative() {
			return nil, malformed("ADD parameters: price cannot be negative")
		}
		return domain.AddCommand{
			Name:      strings.TrimSpace(p.Name),
			Quantity:  p.Quantity,
			Price:     *p.Price,
			Category:  strings.TrimSpace(p.Category),
			Credit:    p.Credit,
			Supplier:  strings.TrimSpace(p.Supplier),
			Reasoning: resp.Reasoning,
		}, nil

	case domain.CommandUpdate:
		var p updateParameters
		if err := decodeParameters(resp.Parameters, &p); err != nil {
			return nil, err
		}
		if err := validate.Struct(p); err != nil {
			return nil, malformed("UPDATE parameters: %v", err)
		}
		field, err := domain.ParseStockField(p.Field)
		if err != nil {
			return nil, malformed("UPDATE parameters: %v", err)
		}
		return domain.UpdateCommand{
			Name:      strings.TrimSpace(p.Name),
			Field:     field,
			Value:     strings.TrimSpace(string(p.Value)),
			Reasoning: resp.Reasoning,
		}, nil

	case domain.CommandQuery:
		return domain.QueryCommand{Answer: resp.Answer, Reasoning: resp.Reasoning}, nil
	}

	return domain.UnknownCommand{Reasoning: resp.Reasoning}, nil
}

func decodeParameters(raw json.RawMessage, into interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return malformed("parameters are missing")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return malformed("invalid parameters: %v", err)
	}
	return nil
}

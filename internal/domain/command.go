package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommandKind tags the variants of Command.
type CommandKind string

const (
	CommandAdd      CommandKind = "ADD"
	CommandUpdate   CommandKind = "UPDATE"
	CommandQuery    CommandKind = "QUERY"
	CommandMovement CommandKind = "MOVEMENT"
	CommandReport   CommandKind = "REPORT"
	CommandUnknown  CommandKind = "UNKNOWN"
)

// Command is an interpreted free-text instruction.
type Command interface {
	Kind() CommandKind
}

// AddCommand adds quantity of an item, optionally bought on credit.
type AddCommand struct {
	Name      string
	Quantity  int
	Price     decimal.Decimal
	Category  string
	Credit    bool
	Supplier  string
	Reasoning string
}

// UpdateCommand sets a single stock field.
type UpdateCommand struct {
	Name      string
	Field     StockField
	Value     string
	Reasoning string
}

// QueryCommand carries the model's answer to a question; it never mutates.
type QueryCommand struct {
	Answer    string
	Reasoning string
}

// MovementCommand is a parsed bin movement.
type MovementCommand struct {
	Movement MovementInput
}

// ReportCommand asks for the activity report of a date range.
type ReportCommand struct {
	Range DateRange
}

// UnknownCommand is returned when the model could not map the text to an action.
type UnknownCommand struct {
	Reasoning string
}

func (AddCommand) Kind() CommandKind      { return CommandAdd }
func (UpdateCommand) Kind() CommandKind   { return CommandUpdate }
func (QueryCommand) Kind() CommandKind    { return CommandQuery }
func (MovementCommand) Kind() CommandKind { return CommandMovement }
func (ReportCommand) Kind() CommandKind   { return CommandReport }
func (UnknownCommand) Kind() CommandKind  { return CommandUnknown }

// ConfirmationKind names the ambiguity a confirmation resolves.
type ConfirmationKind string

const (
	ConfirmPriceMismatch ConfirmationKind = "price_mismatch"
	ConfirmSupplierMatch ConfirmationKind = "supplier_match"
	ConfirmDirectEdit    ConfirmationKind = "direct_edit"
	ConfirmRemoveParty   ConfirmationKind = "remove_party"
)

// Confirmation is returned instead of a write when the user must decide first.
type Confirmation struct {
	Token     string           `json:"token"`
	Kind      ConfirmationKind `json:"kind"`
	Message   string           `json:"message"`
	Current   string           `json:"current,omitempty"`
	Proposed  string           `json:"proposed,omitempty"`
	ExpiresAt time.Time        `json:"expires_at"`
}

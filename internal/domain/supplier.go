package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier represents a vendor the team buys stock from on account.
// Balance only ever grows here; settlement happens outside this system.
type Supplier struct {
	ID        string          `json:"id" db:"id"`
	TeamID    string          `json:"team_id" db:"team_id"`
	Name      string          `json:"name" db:"name"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// CreditTransaction records one stock addition bought on credit
type CreditTransaction struct {
	ID           string          `json:"id" db:"id"`
	TeamID       string          `json:"team_id" db:"team_id"`
	SupplierID   string          `json:"supplier_id" db:"supplier_id"`
	SupplierName string          `json:"supplier_name" db:"supplier_name"`
	ItemName     string          `json:"item_name" db:"item_name"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	Total        decimal.Decimal `json:"total" db:"total"`
	CreatedBy    string          `json:"created_by" db:"created_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Team groups users and scopes every other record.
type Team struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TeamMembership links an auth provider user to a team
type TeamMembership struct {
	TeamID   string `json:"team_id" db:"team_id"`
	TeamName string `json:"team_name" db:"team_name"`
	UserID   string `json:"user_id" db:"user_id"`
	Role     string `json:"role" db:"role"`
}

// Session is the application context handed to every mutation.
// TeamID is the single source of truth for the current team.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	TeamID string `json:"team_id"`
}

// Actor returns the identifier written to audit records.
func (s Session) Actor() string {
	if s.Email != "" {
		return s.Email
	}
	return s.UserID
}

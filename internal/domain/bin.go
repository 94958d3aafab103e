package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BinCategory separates directly counted bin types from aggregate buckets.
type BinCategory string

const (
	BinCategoryStandard BinCategory = "standard"
	BinCategoryMixed    BinCategory = "mixed"
)

// MixedSubCategory is the parent bucket a custom bin type rolls up into.
type MixedSubCategory string

const (
	MixedWood    MixedSubCategory = "mixedWood"
	MixedPlastic MixedSubCategory = "mixedPlastic"
)

func (m MixedSubCategory) Valid() bool {
	return m == MixedWood || m == MixedPlastic
}

// BinType represents a kind of returnable container tracked by the team
type BinType struct {
	ID            string           `json:"id" db:"id"`
	TeamID        string           `json:"team_id" db:"team_id"`
	Name          string           `json:"name" db:"name"`
	Color         string           `json:"color" db:"color"`
	Category      BinCategory      `json:"category" db:"category"`
	IsDefault     bool             `json:"is_default" db:"is_default"`
	SubCategory   MixedSubCategory `json:"sub_category,omitempty" db:"sub_category"`
	OwnedQuantity int              `json:"owned_quantity" db:"owned_quantity"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// Validate checks the category/sub-category pairing.
func (b BinType) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: bin type name is required", ErrValidation)
	}
	switch b.Category {
	case BinCategoryStandard:
		if b.SubCategory != "" {
			return fmt.Errorf("%w: standard bin types have no sub category", ErrValidation)
		}
	case BinCategoryMixed:
		if !b.SubCategory.Valid() {
			return fmt.Errorf("%w: mixed bin types need sub category %s or %s", ErrValidation, MixedWood, MixedPlastic)
		}
	default:
		return fmt.Errorf("%w: unknown bin category %q", ErrValidation, b.Category)
	}
	if b.OwnedQuantity < 0 {
		return fmt.Errorf("%w: owned quantity cannot be negative", ErrValidation)
	}
	return nil
}

// CustomBinType is a leaf type counted under one of the mixed parents
type CustomBinType struct {
	ID        string           `json:"id" db:"id"`
	TeamID    string           `json:"team_id" db:"team_id"`
	Name      string           `json:"name" db:"name"`
	Parent    MixedSubCategory `json:"parent" db:"parent"`
	Count     int              `json:"count" db:"count"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// BinParty is an external counterpart bins are exchanged with.
// Balances maps bin type id to the signed balance.
type BinParty struct {
	ID        string         `json:"id" db:"id"`
	TeamID    string         `json:"team_id" db:"team_id"`
	Name      string         `json:"name" db:"name"`
	Balances  map[string]int `json:"balances" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// BinBalance is one signed ledger position. Positive means the party owes the team.
type BinBalance struct {
	TeamID    string `json:"team_id" db:"team_id"`
	PartyID   string `json:"party_id" db:"party_id"`
	BinTypeID string `json:"bin_type_id" db:"bin_type_id"`
	Balance   int    `json:"balance" db:"balance"`
}

// BinStatus is a physical condition bins on site are counted by.
type BinStatus string

const (
	StatusFull     BinStatus = "full"
	StatusInFridge BinStatus = "inFridge"
	StatusBroken   BinStatus = "broken"
	StatusDump     BinStatus = "dump"

	// StatusTotal is derived and never stored.
	StatusTotal BinStatus = "total"
)

var BinStatuses = []BinStatus{StatusFull, StatusInFridge, StatusBroken, StatusDump}

// ParseBinStatus rejects the derived total and anything unknown.
func ParseBinStatus(raw string) (BinStatus, error) {
	for _, s := range BinStatuses {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	if strings.EqualFold(raw, string(StatusTotal)) {
		return "", fmt.Errorf("%w: total is derived from the status counts and cannot be edited", ErrValidation)
	}
	return "", fmt.Errorf("%w: unknown bin status %q", ErrValidation, raw)
}

// BinStatusCount is the stored count for one (bin type, status) pair
type BinStatusCount struct {
	TeamID    string    `json:"team_id" db:"team_id"`
	BinTypeID string    `json:"bin_type_id" db:"bin_type_id"`
	Status    BinStatus `json:"status" db:"status"`
	Count     int       `json:"count" db:"count"`
}

// DailyBinTotal carries the opening total of a bin type for a date
type DailyBinTotal struct {
	TeamID       string    `json:"team_id" db:"team_id"`
	BinTypeID    string    `json:"bin_type_id" db:"bin_type_id"`
	Date         time.Time `json:"date" db:"date"`
	OpeningTotal int       `json:"opening_total" db:"opening_total"`
}

// RolloverRecord logs who carried totals from one day into the next
type RolloverRecord struct {
	ID          string    `json:"id" db:"id"`
	TeamID      string    `json:"team_id" db:"team_id"`
	FromDate    time.Time `json:"from_date" db:"from_date"`
	ToDate      time.Time `json:"to_date" db:"to_date"`
	PerformedBy string    `json:"performed_by" db:"performed_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MovementType is the direction of a bin movement.
type MovementType string

const (
	MovementSent     MovementType = "sent"
	MovementReceived MovementType = "received"
	MovementReturned MovementType = "returned"
)

// ParseMovementType accepts imperative and past tense verbs.
func ParseMovementType(raw string) (MovementType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sent", "send":
		return MovementSent, nil
	case "received", "receive":
		return MovementReceived, nil
	case "returned", "return":
		return MovementReturned, nil
	}
	return "", fmt.Errorf("%w: unknown movement type %q", ErrValidation, raw)
}

// Delta is the signed change a movement applies to the party balance.
// Sending makes the party owe more; receiving or returning reduces it.
func (m MovementType) Delta(quantity int) int {
	if m == MovementSent {
		return quantity
	}
	return -quantity
}

// MovementInput describes a bin movement before it is resolved against the ledger.
// BinTypeID wins over BinName when both are set.
type MovementInput struct {
	Type        MovementType `json:"type" binding:"required"`
	Quantity    int          `json:"quantity" binding:"required"`
	BinName     string       `json:"bin_name"`
	BinTypeID   string       `json:"bin_type_id"`
	PartyName   string       `json:"party_name" binding:"required"`
	Transporter string       `json:"transporter,omitempty"`
	Contents    string       `json:"contents,omitempty"`
}

func (m MovementInput) Validate() error {
	if _, err := ParseMovementType(string(m.Type)); err != nil {
		return err
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}
	if strings.TrimSpace(m.BinName) == "" && m.BinTypeID == "" {
		return fmt.Errorf("%w: bin type is required", ErrValidation)
	}
	if strings.TrimSpace(m.PartyName) == "" {
		return fmt.Errorf("%w: party name is required", ErrValidation)
	}
	return nil
}

// HistoryType classifies bin history entries.
type HistoryType string

const (
	HistoryMovement HistoryType = "movement"
	HistoryEdit     HistoryType = "edit"
	HistoryParty    HistoryType = "party"
	HistoryConfig   HistoryType = "config"
	HistoryNote     HistoryType = "note"
)

// HistoryDetails is the structured payload stored next to the description.
type HistoryDetails struct {
	MovementType MovementType   `json:"movement_type,omitempty"`
	Quantity     int            `json:"quantity,omitempty"`
	Bin          string         `json:"bin,omitempty"`
	Party        string         `json:"party,omitempty"`
	Transporter  string         `json:"transporter,omitempty"`
	Contents     string         `json:"contents,omitempty"`
	Status       BinStatus      `json:"status,omitempty"`
	OldValue     *int           `json:"old_value,omitempty"`
	NewValue     *int           `json:"new_value,omitempty"`
	Balances     map[string]int `json:"balances,omitempty"`
	FromDate     string         `json:"from_date,omitempty"`
	ToDate       string         `json:"to_date,omitempty"`
}

// Value stores the details as JSON.
func (d HistoryDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan reads JSON details written by Value.
func (d *HistoryDetails) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = HistoryDetails{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported history details type %T", src)
	}
	if len(raw) == 0 {
		*d = HistoryDetails{}
		return nil
	}
	return json.Unmarshal(raw, d)
}

// HistoryEntry is an immutable audit record; only the team note is rewritten in place.
type HistoryEntry struct {
	ID          string         `json:"id" db:"id"`
	TeamID      string         `json:"team_id" db:"team_id"`
	Type        HistoryType    `json:"type" db:"type"`
	Description string         `json:"description" db:"description"`
	Details     HistoryDetails `json:"details" db:"details"`
	CreatedBy   string         `json:"created_by" db:"created_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// IntPtr is a small helper for the optional values in HistoryDetails.
func IntPtr(v int) *int {
	return &v
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceTolerance is the largest unit price difference treated as "the same price".
var PriceTolerance = decimal.RequireFromString("0.001")

// StockItem represents the daily stock sheet row for one product of a team
type StockItem struct {
	ID           string          `json:"id" db:"id"`
	TeamID       string          `json:"team_id" db:"team_id"`
	Name         string          `json:"name" db:"name"`
	Category     string          `json:"category" db:"category"`
	OpeningStock int             `json:"opening_stock" db:"opening_stock"`
	AddedToday   int             `json:"added_today" db:"added_today"`
	Packed       int             `json:"packed" db:"packed"`
	Lost         int             `json:"lost" db:"lost"`
	AlertLevel   int             `json:"alert_level" db:"alert_level"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Color        string          `json:"color" db:"color"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Used is the quantity that left stock today.
func (s StockItem) Used() int {
	return s.Packed + s.Lost
}

// Remaining may be negative when losses were under-reported.
func (s StockItem) Remaining() int {
	return s.OpeningStock + s.AddedToday - s.Used()
}

func (s StockItem) StockValue() decimal.Decimal {
	return decimal.NewFromInt(int64(s.Remaining())).Mul(s.Price)
}

// IsLow reports whether the remaining quantity reached the alert level.
func (s StockItem) IsLow() bool {
	return s.AlertLevel > 0 && s.Remaining() <= s.AlertLevel
}

// PriceDiffers reports whether price is farther than PriceTolerance from the stored price.
func (s StockItem) PriceDiffers(price decimal.Decimal) bool {
	return s.Price.Sub(price).Abs().GreaterThan(PriceTolerance)
}

// RollOver carries remaining stock into the opening stock of the next day.
func (s StockItem) RollOver() StockItem {
	next := s
	next.OpeningStock = s.Remaining()
	next.AddedToday = 0
	next.Packed = 0
	next.Lost = 0
	return next
}

// StockField names a directly editable stock item attribute.
type StockField string

const (
	FieldOpeningStock StockField = "opening_stock"
	FieldAddedToday   StockField = "added_today"
	FieldPacked       StockField = "packed"
	FieldLost         StockField = "lost"
	FieldAlertLevel   StockField = "alert_level"
	FieldPrice        StockField = "price"
	FieldCategory     StockField = "category"
	FieldColor        StockField = "color"
)

// ParseStockField accepts the canonical names plus a few spellings used in free text.
func ParseStockField(raw string) (StockField, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	switch key {
	case "opening_stock", "opening", "openingstock":
		return FieldOpeningStock, nil
	case "added_today", "added", "addedtoday":
		return FieldAddedToday, nil
	case "packed":
		return FieldPacked, nil
	case "lost":
		return FieldLost, nil
	case "alert_level", "alert", "alertlevel":
		return FieldAlertLevel, nil
	case "price", "unit_price":
		return FieldPrice, nil
	case "category":
		return FieldCategory, nil
	case "color", "colour":
		return FieldColor, nil
	}
	return "", fmt.Errorf("%w: unknown stock field %q", ErrValidation, raw)
}

// IsCounter reports whether the field is one of the daily quantity counters.
func (f StockField) IsCounter() bool {
	switch f {
	case FieldOpeningStock, FieldAddedToday, FieldPacked, FieldLost:
		return true
	}
	return false
}

// Apply sets field to the textual value and returns the change for counter fields.
func (s *StockItem) Apply(field StockField, value string) (int, error) {
	value = strings.TrimSpace(value)
	switch field {
	case FieldCategory:
		s.Category = value
		return 0, nil
	case FieldColor:
		s.Color = value
		return 0, nil
	case FieldPrice:
		price, err := decimal.NewFromString(value)
		if err != nil || price.IsNegative() {
			return 0, fmt.Errorf("%w: invalid price %q", ErrValidation, value)
		}
		s.Price = price
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %q", ErrValidation, field, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrValidation, field)
	}

	var target *int
	switch field {
	case FieldOpeningStock:
		target = &s.OpeningStock
	case FieldAddedToday:
		target = &s.AddedToday
	case FieldPacked:
		target = &s.Packed
	case FieldLost:
		target = &s.Lost
	case FieldAlertLevel:
		s.AlertLevel = n
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unknown stock field %q", ErrValidation, field)
	}

	delta := n - *target
	*target = n
	return delta, nil
}

// StockLevel is a stock item together with its derived values
type StockLevel struct {
	StockItem
	Used       int             `json:"used"`
	Remaining  int             `json:"remaining"`
	StockValue decimal.Decimal `json:"stock_value"`
	Low        bool            `json:"low"`
}

func NewStockLevel(item StockItem) StockLevel {
	return StockLevel{
		StockItem:  item,
		Used:       item.Used(),
		Remaining:  item.Remaining(),
		StockValue: item.StockValue(),
		Low:        item.IsLow(),
	}
}

// ActivityAction is the kind of stock activity log entry.
type ActivityAction string

const (
	ActivityAdd    ActivityAction = "add"
	ActivityUpdate ActivityAction = "update"
	ActivityNewDay ActivityAction = "new_day"
)

// ActivityEntry represents one line of the stock activity log
type ActivityEntry struct {
	ID        string          `json:"id" db:"id"`
	TeamID    string          `json:"team_id" db:"team_id"`
	ItemName  string          `json:"item_name" db:"item_name"`
	Action    ActivityAction  `json:"action" db:"action"`
	Field     string          `json:"field,omitempty" db:"field"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Details   string          `json:"details" db:"details"`
	CreatedBy string          `json:"created_by" db:"created_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

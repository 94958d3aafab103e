package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockItemDerivedValues(t *testing.T) {
	item := StockItem{
		Name:         "Widget",
		OpeningStock: 4,
		AddedToday:   10,
		Packed:       3,
		Lost:         1,
		AlertLevel:   10,
		Price:        decimal.RequireFromString("2.50"),
	}

	assert.Equal(t, 4, item.Used())
	assert.Equal(t, 10, item.Remaining())
	assert.True(t, item.StockValue().Equal(decimal.RequireFromString("25")))
	assert.True(t, item.IsLow())

	item.AlertLevel = 0
	assert.False(t, item.IsLow(), "alert level zero disables the low flag")
}

func TestStockItemRemainingIsNotClamped(t *testing.T) {
	item := StockItem{OpeningStock: 1, Packed: 3, Price: decimal.NewFromInt(2)}
	assert.Equal(t, -2, item.Remaining())
	assert.True(t, item.StockValue().Equal(decimal.NewFromInt(-4)))
}

func TestStockItemRollOver(t *testing.T) {
	item := StockItem{OpeningStock: 5, AddedToday: 7, Packed: 2, Lost: 1, AlertLevel: 3}
	next := item.RollOver()

	assert.Equal(t, 9, next.OpeningStock)
	assert.Zero(t, next.AddedToday)
	assert.Zero(t, next.Packed)
	assert.Zero(t, next.Lost)
	assert.Equal(t, 3, next.AlertLevel)
	assert.Equal(t, item.Remaining(), next.Remaining())
}

func TestPriceDiffers(t *testing.T) {
	item := StockItem{Price: decimal.RequireFromString("2.00")}

	tests := []struct {
		price string
		want  bool
	}{
		{"2.00", false},
		{"2.0005", false},
		{"2.001", false},
		{"2.002", true},
		{"3.00", true},
		{"1.99", true},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, item.PriceDiffers(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestParseStockField(t *testing.T) {
	tests := []struct {
		raw     string
		want    StockField
		wantErr bool
	}{
		{"opening_stock", FieldOpeningStock, false},
		{"Opening Stock", FieldOpeningStock, false},
		{"added", FieldAddedToday, false},
		{"PACKED", FieldPacked, false},
		{"unit price", FieldPrice, false},
		{"colour", FieldColor, false},
		{"alert", FieldAlertLevel, false},
		{"weight", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStockField(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStockItemApply(t *testing.T) {
	item := StockItem{OpeningStock: 5, Packed: 2}

	delta, err := item.Apply(FieldPacked, "6")
	require.NoError(t, err)
	assert.Equal(t, 4, delta)
	assert.Equal(t, 6, item.Packed)

	delta, err = item.Apply(FieldOpeningStock, " 3 ")
	require.NoError(t, err)
	assert.Equal(t, -2, delta)

	_, err = item.Apply(FieldPrice, "4.25")
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("4.25")))

	_, err = item.Apply(FieldCategory, "Dry goods")
	require.NoError(t, err)
	assert.Equal(t, "Dry goods", item.Category)

	_, err = item.Apply(FieldLost, "-1")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = item.Apply(FieldLost, "a few")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = item.Apply(FieldPrice, "-3")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewStockLevelWidget(t *testing.T) {
	level := NewStockLevel(StockItem{Name: "Widget", AddedToday: 10, Price: decimal.RequireFromString("2.00")})

	assert.Equal(t, 10, level.Remaining)
	assert.Zero(t, level.Used)
	assert.True(t, level.StockValue.Equal(decimal.RequireFromString("20.00")))
	assert.False(t, level.Low)
}

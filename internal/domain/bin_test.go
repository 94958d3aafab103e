package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMovementType(t *testing.T) {
	tests := []struct {
		raw  string
		want MovementType
	}{
		{"send", MovementSent},
		{"Sent", MovementSent},
		{"receive", MovementReceived},
		{"RECEIVED", MovementReceived},
		{"return", MovementReturned},
		{" returned ", MovementReturned},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMovementType(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMovementType("lend")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMovementDelta(t *testing.T) {
	assert.Equal(t, 5, MovementSent.Delta(5))
	assert.Equal(t, -5, MovementReceived.Delta(5))
	assert.Equal(t, -5, MovementReturned.Delta(5))
}

func TestBalanceIsSumOfDeltasInAnyOrder(t *testing.T) {
	moves := []struct {
		kind MovementType
		qty  int
	}{
		{MovementSent, 5}, {MovementReturned, 2}, {MovementReceived, 7},
		{MovementSent, 11}, {MovementReturned, 1}, {MovementSent, 3},
	}
	want := 5 - 2 - 7 + 11 - 1 + 3

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(moves), func(a, b int) { moves[a], moves[b] = moves[b], moves[a] })
		balance := 0
		for _, m := range moves {
			balance += m.kind.Delta(m.qty)
		}
		assert.Equal(t, want, balance)
	}
}

func TestMovementInputValidate(t *testing.T) {
	valid := MovementInput{Type: MovementSent, Quantity: 2, BinName: "Chep Plastic", PartyName: "Ziyard"}
	require.NoError(t, valid.Validate())

	tests := map[string]func(m *MovementInput){
		"unknown type":  func(m *MovementInput) { m.Type = "lend" },
		"zero quantity": func(m *MovementInput) { m.Quantity = 0 },
		"no bin":        func(m *MovementInput) { m.BinName = " " },
		"no party":      func(m *MovementInput) { m.PartyName = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			m := valid
			mutate(&m)
			assert.ErrorIs(t, m.Validate(), ErrValidation)
		})
	}
}

func TestParseBinStatus(t *testing.T) {
	s, err := ParseBinStatus("infridge")
	require.NoError(t, err)
	assert.Equal(t, StatusInFridge, s)

	_, err = ParseBinStatus("total")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseBinStatus("lost")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBinTypeValidate(t *testing.T) {
	tests := []struct {
		name    string
		bt      BinType
		wantErr bool
	}{
		{"standard", BinType{Name: "Chep", Category: BinCategoryStandard}, false},
		{"mixed wood", BinType{Name: "Mixed Wood", Category: BinCategoryMixed, SubCategory: MixedWood}, false},
		{"mixed without parent", BinType{Name: "Mixed", Category: BinCategoryMixed}, true},
		{"standard with parent", BinType{Name: "Chep", Category: BinCategoryStandard, SubCategory: MixedPlastic}, true},
		{"no name", BinType{Category: BinCategoryStandard}, true},
		{"negative owned", BinType{Name: "Chep", Category: BinCategoryStandard, OwnedQuantity: -1}, true},
		{"unknown category", BinType{Name: "Chep", Category: "crate"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bt.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHistoryDetailsScan(t *testing.T) {
	in := HistoryDetails{MovementType: MovementSent, Quantity: 5, Bin: "Chep Plastic", Party: "Ziyard", OldValue: IntPtr(0)}
	raw, err := in.Value()
	require.NoError(t, err)

	var out HistoryDetails
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, HistoryDetails{}, out)

	assert.Error(t, out.Scan(42))
}

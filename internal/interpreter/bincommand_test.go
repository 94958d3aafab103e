package interpreter

import (
	"testing"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBinTypes = []domain.BinType{
	{ID: "chep", Name: "Chep Plastic"},
	{ID: "loscam", Name: "Loscam"},
}

func TestParseBinCommand(t *testing.T) {
	tests := []struct {
		text string
		want domain.MovementInput
	}{
		{
			text: "send 5 Chep Plastic to Ziyard",
			want: domain.MovementInput{Type: domain.MovementSent, Quantity: 5, BinName: "Chep Plastic", BinTypeID: "chep", PartyName: "Ziyard"},
		},
		{
			text: "Returned 2 chep plastic bins from Ziyard.",
			want: domain.MovementInput{Type: domain.MovementReturned, Quantity: 2, BinName: "Chep Plastic", BinTypeID: "chep", PartyName: "Ziyard"},
		},
		{
			text: "received 10 Loscams from Acme Foods",
			want: domain.MovementInput{Type: domain.MovementReceived, Quantity: 10, BinName: "Loscam", BinTypeID: "loscam", PartyName: "Acme Foods"},
		},
		{
			text: "  SENT 12 loscam bin to fresh farms  ",
			want: domain.MovementInput{Type: domain.MovementSent, Quantity: 12, BinName: "Loscam", BinTypeID: "loscam", PartyName: "fresh farms"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseBinCommand(tt.text, testBinTypes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBinCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains string
	}{
		{"no grammar match", "give Ziyard some bins", "send 5 Chep Plastic to Ziyard"},
		{"quantity in words", "send five Loscam to Ziyard", "send 5 Chep Plastic to Ziyard"},
		{"zero quantity", "send 0 Loscam to Ziyard", "positive"},
		{"unknown bin", "send 3 Pallets to Ziyard", "Chep Plastic, Loscam"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBinCommand(tt.text, testBinTypes)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseBinCommandWithoutTypes(t *testing.T) {
	_, err := ParseBinCommand("send 3 Loscam to Ziyard", nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "none configured")
}

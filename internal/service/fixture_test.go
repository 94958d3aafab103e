package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stockbin/internal/cache"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store         *memory.Store
	confirms      *cache.MemoryConfirmationStore
	pending       *PendingStore
	ledger        *BinLedger
	stock         *StockService
	confirmations *ConfirmationService
	session       domain.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return testNow }

	store := memory.NewStore()
	store.SetClock(clock)
	confirms := cache.NewMemoryConfirmationStore()
	confirms.SetClock(clock)

	pending := NewPendingStore(confirms, time.Minute)
	pending.now = clock
	notes := NewNoteDebouncer(store, time.Hour)
	t.Cleanup(func() { _ = notes.Flush(context.Background()) })

	ledger := NewBinLedger(store, pending, notes, 0)
	ledger.now = clock
	stock := NewStockService(store, pending)
	stock.now = clock

	return &fixture{
		store:         store,
		confirms:      confirms,
		pending:       pending,
		ledger:        ledger,
		stock:         stock,
		confirmations: NewConfirmationService(pending, stock, ledger),
		session:       domain.Session{UserID: "user-1", Email: "ops@example.com", TeamID: "team-1"},
	}
}

func (f *fixture) addBinType(t *testing.T, in BinTypeInput) domain.BinTypeSummary {
	t.Helper()
	res, err := f.ledger.AddBinType(context.Background(), f.session, in)
	require.NoError(t, err)
	row, ok := typeRow(res.Bins, in.Name)
	require.True(t, ok, "bin type %s missing from view", in.Name)
	return row
}

func (f *fixture) move(t *testing.T, kind domain.MovementType, qty int, bin, party string) *Result {
	t.Helper()
	res, err := f.ledger.RecordMovement(context.Background(), f.session, domain.MovementInput{
		Type:      kind,
		Quantity:  qty,
		BinName:   bin,
		PartyName: party,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) partyID(t *testing.T, name string) string {
	t.Helper()
	parties, err := f.store.ListParties(context.Background(), f.session.TeamID)
	require.NoError(t, err)
	p, ok := domain.FindParty(parties, name)
	require.True(t, ok, "party %s not found", name)
	return p.ID
}

func (f *fixture) item(t *testing.T, name string) *domain.StockItem {
	t.Helper()
	it, err := f.store.GetStockItemByName(context.Background(), f.session.TeamID, name)
	require.NoError(t, err)
	return it
}

func typeRow(v *domain.BinView, name string) (domain.BinTypeSummary, bool) {
	if v == nil {
		return domain.BinTypeSummary{}, false
	}
	for _, row := range v.Types {
		if row.Name == name {
			return row, true
		}
	}
	return domain.BinTypeSummary{}, false
}

func partyRow(list []domain.PartySummary, name string) (domain.PartySummary, bool) {
	for _, p := range list {
		if p.Name == name {
			return p, true
		}
	}
	return domain.PartySummary{}, false
}

func levelOf(res *Result, name string) (domain.StockLevel, bool) {
	for _, l := range res.Items {
		if l.Name == name {
			return l, true
		}
	}
	return domain.StockLevel{}, false
}

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/interpreter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedModel struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (m *cannedModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.reply, nil
}

func newCommandService(f *fixture, model interpreter.Model) *CommandService {
	svc := NewCommandService(f.store, interpreter.New(model), f.stock, f.ledger)
	svc.now = f.ledger.now
	return svc
}

func TestRunStockCommandAnswersReportsLocally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)

	model := &cannedModel{}
	res, err := newCommandService(f, model).RunStockCommand(ctx, f.session, "stock report for today")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandReport, res.Kind)
	assert.Equal(t, "Report for 2024-03-15 to 2024-03-15", res.Message)
	require.NotNil(t, res.Report)
	require.Len(t, res.Report.Lines, 1)
	assert.Equal(t, 10, res.Report.Lines[0].Added)
	assert.Zero(t, model.calls)
}

func TestRunStockCommandDispatchesModelActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	model := &cannedModel{}
	svc := newCommandService(f, model)

	model.reply = `{"action":"ADD","parameters":{"name":"Widget","quantity":3,"price":1.25},"reasoning":"adds"}`
	res, err := svc.RunStockCommand(ctx, f.session, "add 3 widgets at 1.25")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandAdd, res.Kind)
	assert.Equal(t, 3, f.item(t, "Widget").AddedToday)

	model.reply = `{"action":"UPDATE","parameters":{"name":"Widget","field":"packed","value":2}}`
	res, err = svc.RunStockCommand(ctx, f.session, "packed 2 widgets")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandUpdate, res.Kind)
	assert.Equal(t, 2, f.item(t, "Widget").Packed)

	model.reply = `{"action":"QUERY","parameters":{},"answer":"You have 1 widget left."}`
	res, err = svc.RunStockCommand(ctx, f.session, "how many widgets?")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandQuery, res.Kind)
	assert.Equal(t, "You have 1 widget left.", res.Message)

	model.reply = `{"action":"UNKNOWN","parameters":{},"reasoning":"Nothing to do."}`
	res, err = svc.RunStockCommand(ctx, f.session, "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandUnknown, res.Kind)
	assert.Equal(t, "Sorry, I could not work out what to do with that command. Nothing to do.", res.Message)

	assert.Equal(t, 4, model.calls)
}

func TestRunStockCommandPriceConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)

	model := &cannedModel{reply: `{"action":"ADD","parameters":{"name":"Widget","quantity":5,"price":"2.40"}}`}
	res, err := newCommandService(f, model).RunStockCommand(ctx, f.session, "add 5 widgets at 2.40")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandAdd, res.Kind)
	require.True(t, res.NeedsConfirmation())
	assert.Equal(t, domain.ConfirmPriceMismatch, res.Confirmation.Kind)
}

func TestRunStockCommandDropsMalformedResponse(t *testing.T) {
	f := newFixture(t)
	model := &cannedModel{reply: `{"action":"ADD","parameters":{"name":"Widget","quantity":3}}`}

	_, err := newCommandService(f, model).RunStockCommand(context.Background(), f.session, "add 3 widgets")
	assert.ErrorIs(t, err, domain.ErrMalformedAIResponse)

	items, err := f.store.ListStockItems(context.Background(), f.session.TeamID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRunStockCommandWithoutModel(t *testing.T) {
	f := newFixture(t)
	svc := newCommandService(f, nil)

	_, err := svc.RunStockCommand(context.Background(), f.session, "add 3 widgets")
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)

	res, err := svc.RunStockCommand(context.Background(), f.session, "activity for yesterday")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandReport, res.Kind)
}

func TestRunBinCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chep := f.addBinType(t, BinTypeInput{Name: "Chep Plastic"})
	svc := newCommandService(f, nil)

	res, err := svc.RunBinCommand(ctx, f.session, "send 5 Chep Plastic bins to Ziyard")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandMovement, res.Kind)
	ziyard, ok := partyRow(res.Bins.OwedToUs, "Ziyard")
	require.True(t, ok)
	assert.Equal(t, 5, ziyard.Bins[chep.ID])

	_, err = svc.RunBinCommand(ctx, f.session, "please move some bins")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.RunBinCommand(ctx, f.session, "send 5 Loscam to Ziyard")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddStockCreatesItem(t *testing.T) {
	f := newFixture(t)

	res, err := f.stock.AddStock(context.Background(), f.session, AddStockInput{Name: " Widget ", Quantity: 10, Price: price("2.00"), Category: "Parts"})
	require.NoError(t, err)
	assert.False(t, res.NeedsConfirmation())
	assert.Equal(t, "Added 10 Widget at 2.00", res.Message)

	widget, ok := levelOf(res, "Widget")
	require.True(t, ok)
	assert.Equal(t, 10, widget.AddedToday)
	assert.Equal(t, 10, widget.Remaining)
	assert.Equal(t, "Parts", widget.Category)
	assert.True(t, widget.StockValue.Equal(price("20")), "stock value %s", widget.StockValue)
	assert.NotNil(t, res.Suppliers)
}

func TestAddStockPriceMismatch(t *testing.T) {
	tests := []struct {
		name      string
		accept    bool
		wantPrice string
	}{
		{"declined keeps stored price", false, "2.00"},
		{"accepted overwrites price", true, "3.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
			require.NoError(t, err)

			res, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "widget", Quantity: 5, Price: price("3.00")})
			require.NoError(t, err)
			require.True(t, res.NeedsConfirmation())
			assert.Equal(t, domain.ConfirmPriceMismatch, res.Confirmation.Kind)
			assert.Equal(t, "2.00", res.Confirmation.Current)
			assert.Equal(t, "3.00", res.Confirmation.Proposed)
			assert.Equal(t, testNow.Add(time.Minute), res.Confirmation.ExpiresAt)
			assert.Equal(t, 10, f.item(t, "Widget").AddedToday, "nothing is added before the answer")

			res, err = f.confirmations.Resolve(ctx, f.session, res.Confirmation.Token, tt.accept)
			require.NoError(t, err)
			assert.False(t, res.NeedsConfirmation())

			item := f.item(t, "Widget")
			assert.Equal(t, 15, item.AddedToday)
			assert.True(t, item.Price.Equal(price(tt.wantPrice)), "price %s", item.Price)
		})
	}
}

func TestAddStockWithinPriceToleranceSkipsConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)

	res, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 1, Price: price("2.001")})
	require.NoError(t, err)
	assert.False(t, res.NeedsConfirmation())
	assert.Equal(t, 11, f.item(t, "Widget").AddedToday)
}

func TestAddStockSupplierSuggestion(t *testing.T) {
	tests := []struct {
		name          string
		accept        bool
		wantSuppliers map[string]string
	}{
		{"accepted books to the suggestion", true, map[string]string{"Acme Foods": "23"}},
		{"declined creates the typed supplier", false, map[string]string{"Acme Foods": "20", "acme food": "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00"), Credit: true, Supplier: "Acme Foods"})
			require.NoError(t, err)

			res, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Bolt", Quantity: 2, Price: price("1.50"), Credit: true, Supplier: "acme food"})
			require.NoError(t, err)
			require.True(t, res.NeedsConfirmation())
			assert.Equal(t, domain.ConfirmSupplierMatch, res.Confirmation.Kind)
			assert.Equal(t, "acme food", res.Confirmation.Current)
			assert.Equal(t, "Acme Foods", res.Confirmation.Proposed)
			_, err = f.store.GetStockItemByName(ctx, f.session.TeamID, "Bolt")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			res, err = f.confirmations.Resolve(ctx, f.session, res.Confirmation.Token, tt.accept)
			require.NoError(t, err)
			assert.Equal(t, 2, f.item(t, "Bolt").AddedToday)

			got := make(map[string]string)
			for _, s := range res.Suppliers {
				got[s.Name] = s.Balance.String()
			}
			assert.Equal(t, tt.wantSuppliers, got)
		})
	}
}

func TestAddStockExactSupplierIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00"), Credit: true, Supplier: "Acme Foods"})
	require.NoError(t, err)

	res, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 1, Price: price("2.00"), Credit: true, Supplier: "ACME FOODS"})
	require.NoError(t, err)
	assert.False(t, res.NeedsConfirmation())
	require.Len(t, res.Suppliers, 1)
	assert.True(t, res.Suppliers[0].Balance.Equal(price("22")))
	assert.Contains(t, res.Message, "on credit from Acme Foods (balance 22.00)")
}

func TestCreditTotalUsesEnteredPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)

	res, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 5, Price: price("3.00"), Credit: true, Supplier: "Acme Foods"})
	require.NoError(t, err)
	require.True(t, res.NeedsConfirmation())

	res, err = f.confirmations.Resolve(ctx, f.session, res.Confirmation.Token, false)
	require.NoError(t, err)
	require.Len(t, res.Suppliers, 1)
	assert.True(t, res.Suppliers[0].Balance.Equal(price("15")), "credit %s", res.Suppliers[0].Balance)
	assert.True(t, f.item(t, "Widget").Price.Equal(price("2.00")))

	credit, err := f.store.ListCreditTransactions(ctx, f.session.TeamID, testNow.Add(-time.Hour), testNow.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, credit, 1)
	assert.True(t, credit[0].UnitPrice.Equal(price("3.00")))
	assert.Equal(t, "Widget", credit[0].ItemName)
}

func TestAddStockValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   AddStockInput
	}{
		{"blank name", AddStockInput{Name: " ", Quantity: 1}},
		{"zero quantity", AddStockInput{Name: "Widget"}},
		{"negative quantity", AddStockInput{Name: "Widget", Quantity: -3}},
		{"negative price", AddStockInput{Name: "Widget", Quantity: 1, Price: price("-1")}},
		{"credit without supplier", AddStockInput{Name: "Widget", Quantity: 1, Credit: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.stock.AddStock(context.Background(), f.session, tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdateStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)

	res, err := f.stock.UpdateStock(ctx, f.session, UpdateStockInput{Name: "widget", Field: "packed", Value: "4"})
	require.NoError(t, err)
	assert.Equal(t, "Set packed of Widget to 4", res.Message)
	widget, _ := levelOf(res, "Widget")
	assert.Equal(t, 6, widget.Remaining)

	res, err = f.stock.UpdateStock(ctx, f.session, UpdateStockInput{Name: "Widget", Field: "price", Value: "2.50"})
	require.NoError(t, err)
	widget, _ = levelOf(res, "Widget")
	assert.True(t, widget.Price.Equal(price("2.5")))

	tests := []struct {
		name string
		in   UpdateStockInput
		want error
	}{
		{"unknown item", UpdateStockInput{Name: "Gadget", Field: "packed", Value: "1"}, domain.ErrNotFound},
		{"unknown field", UpdateStockInput{Name: "Widget", Field: "weight", Value: "1"}, domain.ErrValidation},
		{"not a number", UpdateStockInput{Name: "Widget", Field: "lost", Value: "two"}, domain.ErrValidation},
		{"negative count", UpdateStockInput{Name: "Widget", Field: "lost", Value: "-1"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.stock.UpdateStock(ctx, f.session, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewDayRollsItemsOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)
	_, err = f.stock.UpdateStock(ctx, f.session, UpdateStockInput{Name: "Widget", Field: "packed", Value: "4"})
	require.NoError(t, err)

	res, err := f.stock.NewDay(ctx, f.session)
	require.NoError(t, err)
	assert.Equal(t, "Started a new day for 1 items", res.Message)

	widget := f.item(t, "Widget")
	assert.Equal(t, 6, widget.OpeningStock)
	assert.Zero(t, widget.AddedToday)
	assert.Zero(t, widget.Packed)

	activity, err := f.stock.Activity(ctx, f.session, 0)
	require.NoError(t, err)
	require.Len(t, activity, 3)
	assert.Equal(t, domain.ActivityNewDay, activity[0].Action)
	assert.Equal(t, domain.ActivityAdd, activity[2].Action)

	limited, err := f.stock.Activity(ctx, f.session, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00"), Credit: true, Supplier: "Acme Foods"})
	require.NoError(t, err)
	_, err = f.stock.UpdateStock(ctx, f.session, UpdateStockInput{Name: "Widget", Field: "packed", Value: "4"})
	require.NoError(t, err)
	_, err = f.stock.UpdateStock(ctx, f.session, UpdateStockInput{Name: "Widget", Field: "lost", Value: "1"})
	require.NoError(t, err)

	today := domain.Day(testNow)
	rep, err := f.stock.Report(ctx, f.session, domain.DateRange{From: today, To: today})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Entries)
	require.Len(t, rep.Lines, 1)
	line := rep.Lines[0]
	assert.Equal(t, "Widget", line.ItemName)
	assert.Equal(t, 10, line.Added)
	assert.Equal(t, 4, line.Packed)
	assert.Equal(t, 1, line.Lost)
	assert.True(t, line.AddedValue.Equal(price("20")))
	require.Len(t, rep.Credit, 1)
	assert.Equal(t, "Acme Foods", rep.Credit[0].Supplier)
	assert.True(t, rep.Credit[0].Total.Equal(price("20")))

	yesterday := today.AddDate(0, 0, -1)
	rep, err = f.stock.Report(ctx, f.session, domain.DateRange{From: yesterday, To: yesterday})
	require.NoError(t, err)
	assert.Empty(t, rep.Lines)
	assert.Empty(t, rep.Credit)

	_, err = f.stock.Report(ctx, f.session, domain.DateRange{From: today, To: yesterday})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStockIsScopedToTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)

	other := domain.Session{UserID: "user-2", TeamID: "team-2"}
	res, err := f.stock.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Suppliers)
}

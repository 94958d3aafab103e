package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingPriceChange(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()
	_, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 10, Price: price("2.00")})
	require.NoError(t, err)
	res, err := f.stock.AddStock(ctx, f.session, AddStockInput{Name: "Widget", Quantity: 5, Price: price("3.00")})
	require.NoError(t, err)
	require.True(t, res.NeedsConfirmation())
	return res.Confirmation.Token
}

func TestResolveRejectsUnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.confirmations.Resolve(context.Background(), f.session, "no-such-token", true)
	assert.ErrorIs(t, err, domain.ErrConfirmationExpired)
}

func TestResolveRejectsForeignTeam(t *testing.T) {
	f := newFixture(t)
	token := pendingPriceChange(t, f)

	intruder := domain.Session{UserID: "user-9", TeamID: "team-9"}
	_, err := f.confirmations.Resolve(context.Background(), intruder, token, true)
	assert.ErrorIs(t, err, domain.ErrConfirmationExpired)
	assert.Equal(t, 10, f.item(t, "Widget").AddedToday)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	token := pendingPriceChange(t, f)

	f.confirms.SetClock(func() time.Time { return testNow.Add(2 * time.Minute) })
	_, err := f.confirmations.Resolve(context.Background(), f.session, token, true)
	assert.ErrorIs(t, err, domain.ErrConfirmationExpired)
	assert.Equal(t, 10, f.item(t, "Widget").AddedToday)
}

func TestResolveIsOneShot(t *testing.T) {
	f := newFixture(t)
	token := pendingPriceChange(t, f)

	_, err := f.confirmations.Resolve(context.Background(), f.session, token, true)
	require.NoError(t, err)
	_, err = f.confirmations.Resolve(context.Background(), f.session, token, true)
	assert.ErrorIs(t, err, domain.ErrConfirmationExpired)
	assert.Equal(t, 15, f.item(t, "Widget").AddedToday)
}

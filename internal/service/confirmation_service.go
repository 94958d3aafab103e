package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
)

// ConfirmationService resumes actions parked behind a confirmation token
type ConfirmationService struct {
	pending *PendingStore
	stock   *StockService
	ledger  *BinLedger
}

func NewConfirmationService(pending *PendingStore, stock *StockService, ledger *BinLedger) *ConfirmationService {
	return &ConfirmationService{pending: pending, stock: stock, ledger: ledger}
}

// Resolve answers the confirmation behind token. Unknown, expired, used or
// foreign tokens fail with domain.ErrConfirmationExpired.
func (c *ConfirmationService) Resolve(ctx context.Context, s domain.Session, token string, accept bool) (*Result, error) {
	action, err := c.pending.Take(ctx, s, token)
	if err != nil {
		return nil, err
	}

	switch action.Kind {
	case domain.ConfirmPriceMismatch:
		if action.AddStock == nil {
			return nil, domain.ErrConfirmationExpired
		}
		in := *action.AddStock
		in.PriceResolved = true
		in.OverwritePrice = accept
		return c.stock.AddStock(ctx, s, in)

	case domain.ConfirmSupplierMatch:
		if action.AddStock == nil {
			return nil, domain.ErrConfirmationExpired
		}
		in := *action.AddStock
		in.SupplierResolved = true
		if accept {
			in.Supplier = action.Suggestion
		}
		return c.stock.AddStock(ctx, s, in)

	case domain.ConfirmDirectEdit:
		if action.DirectEdit == nil {
			return nil, domain.ErrConfirmationExpired
		}
		if !accept {
			return c.discarded(ctx, s, "Edit discarded")
		}
		return c.ledger.CommitDirectEdit(ctx, s, *action.DirectEdit)

	case domain.ConfirmRemoveParty:
		if !accept {
			return c.discarded(ctx, s, "Party kept")
		}
		return c.ledger.CommitRemoveParty(ctx, s, action.PartyID)
	}

	return nil, fmt.Errorf("%w: unknown confirmation kind %q", domain.ErrValidation, action.Kind)
}

func (c *ConfirmationService) discarded(ctx context.Context, s domain.Session, message string) (*Result, error) {
	agg, err := c.ledger.Aggregate(ctx, s, time.Time{})
	if err != nil {
		return nil, err
	}
	return binResult(message, agg), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/interpreter"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// StockStore is the part of the store the stock service works against.
type StockStore interface {
	repository.StockRepository
	repository.SupplierRepository
}

// AddStockInput adds quantity of an item. The resolution flags are set when
// the user already answered the corresponding confirmation.
type AddStockInput struct {
	Name     string          `json:"name" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Credit   bool            `json:"credit"`
	Supplier string          `json:"supplier"`

	PriceResolved    bool `json:"price_resolved,omitempty"`
	OverwritePrice   bool `json:"overwrite_price,omitempty"`
	SupplierResolved bool `json:"supplier_resolved,omitempty"`
}

func (in AddStockInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", domain.ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if in.Credit && strings.TrimSpace(in.Supplier) == "" {
		return fmt.Errorf("%w: supplier is required for credit purchases", domain.ErrValidation)
	}
	return nil
}

// UpdateStockInput sets one field of an existing item.
type UpdateStockInput struct {
	Name  string `json:"name"`
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type StockService struct {
	store   StockStore
	pending *PendingStore
	now     func() time.Time
}

func NewStockService(store StockStore, pending *PendingStore) *StockService {
	return &StockService{store: store, pending: pending, now: time.Now}
}

// List reloads every item and supplier of the team.
func (s *StockService) List(ctx context.Context, sess domain.Session) (*Result, error) {
	var (
		items     []domain.StockItem
		suppliers []domain.Supplier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.ListStockItems(gctx, sess.TeamID)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = s.store.ListSuppliers(gctx, sess.TeamID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reload stock: %w", err)
	}

	levels := make([]domain.StockLevel, 0, len(items))
	for _, it := range items {
		levels = append(levels, domain.NewStockLevel(it))
	}
	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}
	return &Result{Items: levels, Suppliers: suppliers}, nil
}

func (s *StockService) reload(ctx context.Context, sess domain.Session, message string) (*Result, error) {
	res, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	res.Message = message
	return res, nil
}

// AddStock creates or tops up an item. A near-miss supplier name and a
// differing unit price each stop the write and return a confirmation instead.
func (s *StockService) AddStock(ctx context.Context, sess domain.Session, in AddStockInput) (*Result, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Supplier = strings.TrimSpace(in.Supplier)
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.Credit && !in.SupplierResolved {
		suppliers, err := s.store.ListSuppliers(ctx, sess.TeamID)
		if err != nil {
			return nil, err
		}
		if match, ok := interpreter.SuggestSupplier(in.Supplier, suppliers); ok {
			if !match.Exact() {
				message := fmt.Sprintf("Did you mean supplier %q instead of %q?", match.Name, in.Supplier)
				return s.confirm(ctx, sess, PendingAction{Kind: domain.ConfirmSupplierMatch, AddStock: &in, Suggestion: match.Name},
					message, in.Supplier, match.Name)
			}
			in.Supplier = match.Name
		}
		in.SupplierResolved = true
	}

	item, err := s.store.GetStockItemByName(ctx, sess.TeamID, in.Name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		item = &domain.StockItem{
			TeamID:     sess.TeamID,
			Name:       in.Name,
			Category:   in.Category,
			AddedToday: in.Quantity,
			Price:      in.Price,
		}
	case err != nil:
		return nil, err
	default:
		if !in.PriceResolved && item.PriceDiffers(in.Price) {
			message := fmt.Sprintf("%s is stored at %s per unit but %s was given. Update the price?",
				item.Name, item.Price.StringFixed(2), in.Price.StringFixed(2))
			return s.confirm(ctx, sess, PendingAction{Kind: domain.ConfirmPriceMismatch, AddStock: &in},
				message, item.Price.StringFixed(2), in.Price.StringFixed(2))
		}
		item.AddedToday += in.Quantity
		if in.OverwritePrice || !item.PriceDiffers(in.Price) {
			item.Price = in.Price
		}
		if item.Category == "" && in.Category != "" {
			item.Category = in.Category
		}
	}

	qty := decimal.NewFromInt(int64(in.Quantity))
	activity := &domain.ActivityEntry{
		TeamID:    sess.TeamID,
		ItemName:  item.Name,
		Action:    domain.ActivityAdd,
		Field:     string(domain.FieldAddedToday),
		Quantity:  in.Quantity,
		Amount:    qty.Mul(item.Price),
		Details:   fmt.Sprintf("Added %d %s at %s", in.Quantity, item.Name, item.Price.StringFixed(2)),
		CreatedBy: sess.Actor(),
	}
	if err := s.store.UpsertStockItem(ctx, item, activity); err != nil {
		return nil, err
	}
	message := activity.Details

	if in.Credit {
		credit := &domain.CreditTransaction{
			TeamID:       sess.TeamID,
			SupplierName: in.Supplier,
			ItemName:     item.Name,
			Quantity:     in.Quantity,
			UnitPrice:    in.Price,
			Total:        qty.Mul(in.Price),
			CreatedBy:    sess.Actor(),
		}
		supplier, err := s.store.RecordCreditPurchase(ctx, credit)
		if err != nil {
			log.Error().Err(err).Str("item", item.Name).Str("supplier", in.Supplier).Msg("stock: credit purchase not recorded")
			return nil, fmt.Errorf("stock added but credit purchase failed: %w", err)
		}
		message = fmt.Sprintf("%s on credit from %s (balance %s)", message, supplier.Name, supplier.Balance.StringFixed(2))
	}

	return s.reload(ctx, sess, message)
}

func (s *StockService) confirm(ctx context.Context, sess domain.Session, action PendingAction, message, current, proposed string) (*Result, error) {
	confirmation, err := s.pending.Create(ctx, sess, action, message, current, proposed)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: domain.CommandAdd, Message: message, Confirmation: confirmation}, nil
}

// UpdateStock sets a single field of an existing item.
func (s *StockService) UpdateStock(ctx context.Context, sess domain.Session, in UpdateStockInput) (*Result, error) {
	field, err := domain.ParseStockField(in.Field)
	if err != nil {
		return nil, err
	}
	item, err := s.store.GetStockItemByName(ctx, sess.TeamID, in.Name)
	if err != nil {
		return nil, err
	}

	delta, err := item.Apply(field, in.Value)
	if err != nil {
		return nil, err
	}

	activity := &domain.ActivityEntry{
		TeamID:    sess.TeamID,
		ItemName:  item.Name,
		Action:    domain.ActivityUpdate,
		Field:     string(field),
		Quantity:  delta,
		Details:   fmt.Sprintf("Set %s of %s to %s", field, item.Name, strings.TrimSpace(in.Value)),
		CreatedBy: sess.Actor(),
	}
	if field == domain.FieldPrice {
		activity.Amount = item.Price
	}
	if err := s.store.UpsertStockItem(ctx, item, activity); err != nil {
		return nil, err
	}
	return s.reload(ctx, sess, activity.Details)
}

// NewDay rolls every item over in one batch.
func (s *StockService) NewDay(ctx context.Context, sess domain.Session) (*Result, error) {
	items, err := s.store.ListStockItems(ctx, sess.TeamID)
	if err != nil {
		return nil, err
	}

	next := make([]domain.StockItem, 0, len(items))
	for _, it := range items {
		next = append(next, it.RollOver())
	}

	activity := &domain.ActivityEntry{
		TeamID:    sess.TeamID,
		Action:    domain.ActivityNewDay,
		Quantity:  len(next),
		Details:   fmt.Sprintf("Started a new day for %d items", len(next)),
		CreatedBy: sess.Actor(),
	}
	if err := s.store.UpsertStockItems(ctx, next, activity); err != nil {
		return nil, err
	}
	return s.reload(ctx, sess, activity.Details)
}

// Activity returns the most recent activity entries, newest first.
func (s *StockService) Activity(ctx context.Context, sess domain.Session, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = repository.HistoryLimit
	}
	return s.store.ListActivity(ctx, sess.TeamID, time.Time{}, s.now().Add(24*time.Hour), limit)
}

// Report summarises stock activity and credit purchases over r.
func (s *StockService) Report(ctx context.Context, sess domain.Session, r domain.DateRange) (*domain.StockReport, error) {
	if r.To.Before(r.From) {
		return nil, fmt.Errorf("%w: report range ends before it starts", domain.ErrValidation)
	}

	var (
		activity []domain.ActivityEntry
		credit   []domain.CreditTransaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activity, err = s.store.ListActivity(gctx, sess.TeamID, r.From, r.End(), 0)
		return err
	})
	g.Go(func() error {
		var err error
		credit, err = s.store.ListCreditTransactions(gctx, sess.TeamID, r.From, r.End())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load report data: %w", err)
	}

	report := domain.BuildStockReport(r, activity, credit)
	return &report, nil
}

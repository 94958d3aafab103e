package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/rs/zerolog/log"
)

// unavailableStore stands in when no store credentials are configured.
// Every call fails with domain.ErrStoreUnavailable.
type unavailableStore struct{}

var _ Store = unavailableStore{}

// NewUnavailableStore logs the missing configuration once and returns a Store
// whose operations all fail with domain.ErrStoreUnavailable.
func NewUnavailableStore(reason string) Store {
	log.Warn().Str("reason", reason).Msg("data store is not configured, running in unavailable mode")
	return unavailableStore{}
}

// IsUnavailable reports whether s is the unavailable stand-in.
func IsUnavailable(s Store) bool {
	_, ok := s.(unavailableStore)
	return ok
}

var errUnavailable = domain.ErrStoreUnavailable

func (unavailableStore) Ping(context.Context) error { return errUnavailable }
func (unavailableStore) Close() error               { return nil }

func (unavailableStore) ListStockItems(context.Context, string) ([]domain.StockItem, error) {
	return nil, errUnavailable
}
func (unavailableStore) GetStockItemByName(context.Context, string, string) (*domain.StockItem, error) {
	return nil, errUnavailable
}
func (unavailableStore) UpsertStockItem(context.Context, *domain.StockItem, *domain.ActivityEntry) error {
	return errUnavailable
}
func (unavailableStore) UpsertStockItems(context.Context, []domain.StockItem, *domain.ActivityEntry) error {
	return errUnavailable
}
func (unavailableStore) ListActivity(context.Context, string, time.Time, time.Time, int) ([]domain.ActivityEntry, error) {
	return nil, errUnavailable
}

func (unavailableStore) ListSuppliers(context.Context, string) ([]domain.Supplier, error) {
	return nil, errUnavailable
}
func (unavailableStore) RecordCreditPurchase(context.Context, *domain.CreditTransaction) (*domain.Supplier, error) {
	return nil, errUnavailable
}
func (unavailableStore) ListCreditTransactions(context.Context, string, time.Time, time.Time) ([]domain.CreditTransaction, error) {
	return nil, errUnavailable
}

func (unavailableStore) GetMembership(context.Context, string) (*domain.TeamMembership, error) {
	return nil, errUnavailable
}
func (unavailableStore) CreateTeam(context.Context, *domain.Team, string) (*domain.TeamMembership, error) {
	return nil, errUnavailable
}

func (unavailableStore) ListBinTypes(context.Context, string) ([]domain.BinType, error) {
	return nil, errUnavailable
}
func (unavailableStore) ListCustomBinTypes(context.Context, string) ([]domain.CustomBinType, error) {
	return nil, errUnavailable
}
func (unavailableStore) ListParties(context.Context, string) ([]domain.BinParty, error) {
	return nil, errUnavailable
}
func (unavailableStore) ListBalances(context.Context, string) ([]domain.BinBalance, error) {
	return nil, errUnavailable
}
func (unavailableStore) ListStatusCounts(context.Context, string) ([]domain.BinStatusCount, error) {
	return nil, errUnavailable
}
func (unavailableStore) GetOpeningTotals(context.Context, string, time.Time) (map[string]int, error) {
	return nil, errUnavailable
}
func (unavailableStore) GetBalance(context.Context, string, string, string) (int, error) {
	return 0, errUnavailable
}
func (unavailableStore) SaveBalance(context.Context, domain.BinBalance, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) CreateParty(context.Context, *domain.BinParty, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) DeleteParty(context.Context, string, string, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) CreateBinType(context.Context, *domain.BinType, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) UpdateBinType(context.Context, *domain.BinType, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) DeleteBinType(context.Context, string, string, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) CreateCustomBinType(context.Context, *domain.CustomBinType, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) UpdateCustomBinType(context.Context, *domain.CustomBinType, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) DeleteCustomBinType(context.Context, string, string, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) UpsertStatusCount(context.Context, domain.BinStatusCount, *domain.HistoryEntry) error {
	return errUnavailable
}
func (unavailableStore) SaveRollover(context.Context, []domain.DailyBinTotal, *domain.RolloverRecord, *domain.HistoryEntry) error {
	return errUnavailable
}

func (unavailableStore) ListHistory(context.Context, string, int) ([]domain.HistoryEntry, error) {
	return nil, errUnavailable
}
func (unavailableStore) UpsertNote(context.Context, string, string, string) error {
	return errUnavailable
}
func (unavailableStore) GetNote(context.Context, string) (string, error) {
	return "", errUnavailable
}

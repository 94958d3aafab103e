package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
)

// HistoryLimit caps the bin history returned to the dashboard.
const HistoryLimit = 200

type StockRepository interface {
	ListStockItems(ctx context.Context, teamID string) ([]domain.StockItem, error)
	// GetStockItemByName matches case-insensitively; returns domain.ErrNotFound when absent.
	GetStockItemByName(ctx context.Context, teamID, name string) (*domain.StockItem, error)
	UpsertStockItem(ctx context.Context, item *domain.StockItem, activity *domain.ActivityEntry) error
	// UpsertStockItems writes every item and the activity entry in one transaction.
	UpsertStockItems(ctx context.Context, items []domain.StockItem, activity *domain.ActivityEntry) error
	ListActivity(ctx context.Context, teamID string, from, to time.Time, limit int) ([]domain.ActivityEntry, error)
}

type SupplierRepository interface {
	ListSuppliers(ctx context.Context, teamID string) ([]domain.Supplier, error)
	// RecordCreditPurchase creates the supplier when needed, increments its balance by tx.Total and stores tx.
	RecordCreditPurchase(ctx context.Context, tx *domain.CreditTransaction) (*domain.Supplier, error)
	ListCreditTransactions(ctx context.Context, teamID string, from, to time.Time) ([]domain.CreditTransaction, error)
}

type TeamRepository interface {
	// GetMembership returns domain.ErrNotFound for users without a team.
	GetMembership(ctx context.Context, userID string) (*domain.TeamMembership, error)
	CreateTeam(ctx context.Context, team *domain.Team, owner string) (*domain.TeamMembership, error)
}

type BinRepository interface {
	ListBinTypes(ctx context.Context, teamID string) ([]domain.BinType, error)
	ListCustomBinTypes(ctx context.Context, teamID string) ([]domain.CustomBinType, error)
	ListParties(ctx context.Context, teamID string) ([]domain.BinParty, error)
	ListBalances(ctx context.Context, teamID string) ([]domain.BinBalance, error)
	ListStatusCounts(ctx context.Context, teamID string) ([]domain.BinStatusCount, error)
	// GetOpeningTotals returns opening totals keyed by bin type id for date.
	GetOpeningTotals(ctx context.Context, teamID string, date time.Time) (map[string]int, error)

	// GetBalance returns 0 when no balance row exists yet.
	GetBalance(ctx context.Context, teamID, partyID, binTypeID string) (int, error)
	// SaveBalance upserts the balance and appends entry atomically.
	SaveBalance(ctx context.Context, balance domain.BinBalance, entry *domain.HistoryEntry) error

	CreateParty(ctx context.Context, party *domain.BinParty, entry *domain.HistoryEntry) error
	// DeleteParty removes the party and, by cascade, all of its balances.
	DeleteParty(ctx context.Context, teamID, partyID string, entry *domain.HistoryEntry) error

	CreateBinType(ctx context.Context, bt *domain.BinType, entry *domain.HistoryEntry) error
	UpdateBinType(ctx context.Context, bt *domain.BinType, entry *domain.HistoryEntry) error
	DeleteBinType(ctx context.Context, teamID, binTypeID string, entry *domain.HistoryEntry) error

	CreateCustomBinType(ctx context.Context, ct *domain.CustomBinType, entry *domain.HistoryEntry) error
	UpdateCustomBinType(ctx context.Context, ct *domain.CustomBinType, entry *domain.HistoryEntry) error
	DeleteCustomBinType(ctx context.Context, teamID, id string, entry *domain.HistoryEntry) error

	UpsertStatusCount(ctx context.Context, sc domain.BinStatusCount, entry *domain.HistoryEntry) error
	// SaveRollover overwrites the opening totals of record.ToDate.
	SaveRollover(ctx context.Context, totals []domain.DailyBinTotal, record *domain.RolloverRecord, entry *domain.HistoryEntry) error
}

type HistoryRepository interface {
	ListHistory(ctx context.Context, teamID string, limit int) ([]domain.HistoryEntry, error)
	// UpsertNote keeps at most one note entry per team.
	UpsertNote(ctx context.Context, teamID, text, author string) error
	GetNote(ctx context.Context, teamID string) (string, error)
}

// Store is everything the services need from the backing data store.
type Store interface {
	StockRepository
	SupplierRepository
	TeamRepository
	BinRepository
	HistoryRepository
	Ping(ctx context.Context) error
	Close() error
}

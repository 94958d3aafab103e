package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Store implements repository.Store on top of postgres
type Store struct {
	*stockRepository
	*supplierRepository
	*teamRepository
	*binRepository
	*historyRepository
	db *DB
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{
		stockRepository:    NewStockRepository(db),
		supplierRepository: NewSupplierRepository(db),
		teamRepository:     NewTeamRepository(db),
		binRepository:      NewBinRepository(db),
		historyRepository:  NewHistoryRepository(db),
		db:                 db,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

const uniqueViolation = "23505"

// translate maps driver errors onto domain errors. Both lib/pq (server) and
// the pgx stdlib driver (CLI) can sit behind the same DB.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s already exists", domain.ErrValidation, what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s already exists", domain.ErrValidation, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// expectRow turns an update or delete that matched nothing into ErrNotFound.
func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

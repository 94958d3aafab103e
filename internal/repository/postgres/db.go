package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

type DB struct {
	*sqlx.DB
	sem   *semaphore.Weighted
	retry repository.RetryPolicy
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates a new database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", cfg.DSN())
		if err != nil {
			return
		}

		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		dbInstance = Wrap(db, cfg.MaxConcurrentTx, PolicyFromConfig(cfg))
	})

	return dbInstance, err
}

// Wrap adapts an existing connection, e.g. one opened through the pgx stdlib driver.
func Wrap(db *sqlx.DB, maxConcurrentTx int64, policy repository.RetryPolicy) *DB {
	if maxConcurrentTx <= 0 {
		maxConcurrentTx = 10
	}
	return &DB{
		DB:    db,
		sem:   semaphore.NewWeighted(maxConcurrentTx),
		retry: policy,
	}
}

// PolicyFromConfig reads the retry settings, falling back to the defaults.
func PolicyFromConfig(cfg *config.DatabaseConfig) repository.RetryPolicy {
	policy := repository.DefaultRetryPolicy()
	if cfg.RetryAttempts > 0 {
		policy.Attempts = cfg.RetryAttempts
	}
	if cfg.RetryInitialMillis > 0 {
		policy.Initial = time.Duration(cfg.RetryInitialMillis) * time.Millisecond
	}
	if cfg.RetryMaxMillis > 0 {
		policy.Max = time.Duration(cfg.RetryMaxMillis) * time.Millisecond
	}
	return policy
}

// Do runs fn with the configured retry policy
func (db *DB) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return repository.Retry(ctx, db.retry, fn)
}

// WithTx executes a function within a transaction, retrying the whole
// transaction on transient failures.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return db.Do(ctx, func(ctx context.Context) error {
		return db.withTx(ctx, fn)
	})
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	// Acquire semaphore
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type binRepository struct {
	db *DB
}

func NewBinRepository(db *DB) *binRepository {
	return &binRepository{db: db}
}

func (r *binRepository) ListBinTypes(ctx context.Context, teamID string) ([]domain.BinType, error) {
	query := `
		SELECT id, team_id, name, color, category, is_default, sub_category, owned_quantity, created_at
		FROM bin_types
		WHERE team_id = $1
		ORDER BY is_default DESC, created_at, name
	`
	var types []domain.BinType
	err := r.db.Do(ctx, func(ctx context.Context) error {
		types = types[:0]
		return r.db.SelectContext(ctx, &types, query, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bin types: %w", err)
	}
	return types, nil
}

func (r *binRepository) ListCustomBinTypes(ctx context.Context, teamID string) ([]domain.CustomBinType, error) {
	query := `
		SELECT id, team_id, name, parent, count, created_at
		FROM custom_bin_types
		WHERE team_id = $1
		ORDER BY created_at, name
	`
	var types []domain.CustomBinType
	err := r.db.Do(ctx, func(ctx context.Context) error {
		types = types[:0]
		return r.db.SelectContext(ctx, &types, query, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list custom bin types: %w", err)
	}
	return types, nil
}

// ListParties returns the parties with their balances attached.
func (r *binRepository) ListParties(ctx context.Context, teamID string) ([]domain.BinParty, error) {
	var parties []domain.BinParty
	err := r.db.Do(ctx, func(ctx context.Context) error {
		parties = parties[:0]
		return r.db.SelectContext(ctx, &parties,
			`SELECT id, team_id, name, created_at FROM bin_parties WHERE team_id = $1 ORDER BY lower(name)`, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}

	balances, err := r.ListBalances(ctx, teamID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(parties))
	for i := range parties {
		parties[i].Balances = make(map[string]int)
		index[parties[i].ID] = i
	}
	for _, b := range balances {
		if i, ok := index[b.PartyID]; ok {
			parties[i].Balances[b.BinTypeID] = b.Balance
		}
	}
	return parties, nil
}

func (r *binRepository) ListBalances(ctx context.Context, teamID string) ([]domain.BinBalance, error) {
	var balances []domain.BinBalance
	err := r.db.Do(ctx, func(ctx context.Context) error {
		balances = balances[:0]
		return r.db.SelectContext(ctx, &balances,
			`SELECT team_id, party_id, bin_type_id, balance FROM bin_balances WHERE team_id = $1`, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return balances, nil
}

func (r *binRepository) ListStatusCounts(ctx context.Context, teamID string) ([]domain.BinStatusCount, error) {
	var counts []domain.BinStatusCount
	err := r.db.Do(ctx, func(ctx context.Context) error {
		counts = counts[:0]
		return r.db.SelectContext(ctx, &counts,
			`SELECT team_id, bin_type_id, status, count FROM bin_status_counts WHERE team_id = $1`, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list status counts: %w", err)
	}
	return counts, nil
}

func (r *binRepository) GetOpeningTotals(ctx context.Context, teamID string, date time.Time) (map[string]int, error) {
	var rows []domain.DailyBinTotal
	err := r.db.Do(ctx, func(ctx context.Context) error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows,
			`SELECT team_id, bin_type_id, date, opening_total FROM daily_bin_totals WHERE team_id = $1 AND date = $2`,
			teamID, date.Format(domain.DateLayout))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load opening totals: %w", err)
	}
	totals := make(map[string]int, len(rows))
	for _, t := range rows {
		totals[t.BinTypeID] = t.OpeningTotal
	}
	return totals, nil
}

func (r *binRepository) GetBalance(ctx context.Context, teamID, partyID, binTypeID string) (int, error) {
	var balance int
	err := r.db.Do(ctx, func(ctx context.Context) error {
		err := r.db.GetContext(ctx, &balance,
			`SELECT balance FROM bin_balances WHERE team_id = $1 AND party_id = $2 AND bin_type_id = $3`,
			teamID, partyID, binTypeID)
		if errors.Is(err, sql.ErrNoRows) {
			balance = 0
			return nil
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load balance: %w", err)
	}
	return balance, nil
}

// SaveBalance writes the balance and its audit entry in one transaction.
func (r *binRepository) SaveBalance(ctx context.Context, balance domain.BinBalance, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO bin_balances (team_id, party_id, bin_type_id, balance, updated_at)
			SELECT $1, p.id, b.id, $4, NOW()
			FROM bin_parties p, bin_types b
			WHERE p.id = $2 AND b.id = $3 AND p.team_id = $1 AND b.team_id = $1
			ON CONFLICT (party_id, bin_type_id)
			DO UPDATE SET balance = EXCLUDED.balance, updated_at = NOW()
		`
		res, err := tx.ExecContext(ctx, query, balance.TeamID, balance.PartyID, balance.BinTypeID, balance.Balance)
		if err != nil {
			return fmt.Errorf("failed to save balance: %w", err)
		}
		if err := expectRow(res, "party or bin type"); err != nil {
			return err
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) CreateParty(ctx context.Context, party *domain.BinParty, entry *domain.HistoryEntry) error {
	if party.ID == "" {
		party.ID = uuid.NewString()
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO bin_parties (id, team_id, name, created_at) VALUES ($1, $2, $3, NOW()) RETURNING created_at`,
			party.ID, party.TeamID, party.Name,
		).Scan(&party.CreatedAt)
		if err != nil {
			return translate(err, "party "+party.Name)
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) DeleteParty(ctx context.Context, teamID, partyID string, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM bin_parties WHERE id = $1 AND team_id = $2`, partyID, teamID)
		if err != nil {
			return fmt.Errorf("failed to delete party: %w", err)
		}
		if err := expectRow(res, "party"); err != nil {
			return err
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) CreateBinType(ctx context.Context, bt *domain.BinType, entry *domain.HistoryEntry) error {
	if bt.ID == "" {
		bt.ID = uuid.NewString()
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO bin_types (id, team_id, name, color, category, is_default, sub_category, owned_quantity, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			RETURNING created_at
		`
		err := tx.QueryRowxContext(ctx, query,
			bt.ID, bt.TeamID, bt.Name, bt.Color, bt.Category, bt.IsDefault, bt.SubCategory, bt.OwnedQuantity,
		).Scan(&bt.CreatedAt)
		if err != nil {
			return translate(err, "bin type "+bt.Name)
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) UpdateBinType(ctx context.Context, bt *domain.BinType, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE bin_types
			SET name = $3, color = $4, category = $5, sub_category = $6, owned_quantity = $7
			WHERE id = $1 AND team_id = $2
		`
		res, err := tx.ExecContext(ctx, query,
			bt.ID, bt.TeamID, bt.Name, bt.Color, bt.Category, bt.SubCategory, bt.OwnedQuantity)
		if err != nil {
			return translate(err, "bin type "+bt.Name)
		}
		if err := expectRow(res, "bin type"); err != nil {
			return err
		}
		return insertHistory(ctx, tx, entry)
	})
}

// DeleteBinType relies on ON DELETE CASCADE for balances, status counts and totals.
func (r *binRepository) DeleteBinType(ctx context.Context, teamID, binTypeID string, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM bin_types WHERE id = $1 AND team_id = $2`, binTypeID, teamID)
		if err != nil {
			return fmt.Errorf("failed to delete bin type: %w", err)
		}
		if err := expectRow(res, "bin type"); err != nil {
			return err
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) CreateCustomBinType(ctx context.Context, ct *domain.CustomBinType, entry *domain.HistoryEntry) error {
	if ct.ID == "" {
		ct.ID = uuid.NewString()
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO custom_bin_types (id, team_id, name, parent, count, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`,
			ct.ID, ct.TeamID, ct.Name, ct.Parent, ct.Count,
		).Scan(&ct.CreatedAt)
		if err != nil {
			return translate(err, "custom bin type "+ct.Name)
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) UpdateCustomBinType(ctx context.Context, ct *domain.CustomBinType, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE custom_bin_types SET name = $3, parent = $4, count = $5 WHERE id = $1 AND team_id = $2`,
			ct.ID, ct.TeamID, ct.Name, ct.Parent, ct.Count)
		if err != nil {
			return fmt.Errorf("failed to update custom bin type: %w", err)
		}
		if err := expectRow(res, "custom bin type"); err != nil {
			return err
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) DeleteCustomBinType(ctx context.Context, teamID, id string, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM custom_bin_types WHERE id = $1 AND team_id = $2`, id, teamID)
		if err != nil {
			return fmt.Errorf("failed to delete custom bin type: %w", err)
		}
		if err := expectRow(res, "custom bin type"); err != nil {
			return err
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) UpsertStatusCount(ctx context.Context, sc domain.BinStatusCount, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO bin_status_counts (team_id, bin_type_id, status, count)
			SELECT $1, b.id, $3, $4 FROM bin_types b WHERE b.id = $2 AND b.team_id = $1
			ON CONFLICT (bin_type_id, status)
			DO UPDATE SET count = EXCLUDED.count
		`
		res, err := tx.ExecContext(ctx, query, sc.TeamID, sc.BinTypeID, sc.Status, sc.Count)
		if err != nil {
			return fmt.Errorf("failed to save status count: %w", err)
		}
		if err := expectRow(res, "bin type"); err != nil {
			return err
		}
		return insertHistory(ctx, tx, entry)
	})
}

func (r *binRepository) SaveRollover(ctx context.Context, totals []domain.DailyBinTotal, record *domain.RolloverRecord, entry *domain.HistoryEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO daily_bin_totals (team_id, bin_type_id, date, opening_total)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (bin_type_id, date)
			DO UPDATE SET opening_total = EXCLUDED.opening_total
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, t := range totals {
			if _, err := stmt.ExecContext(ctx, t.TeamID, t.BinTypeID, t.Date.Format(domain.DateLayout), t.OpeningTotal); err != nil {
				return fmt.Errorf("failed to save opening total: %w", err)
			}
		}

		if record != nil {
			if record.ID == "" {
				record.ID = uuid.NewString()
			}
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO bin_rollovers (id, team_id, from_date, to_date, performed_by, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`,
				record.ID, record.TeamID, record.FromDate.Format(domain.DateLayout),
				record.ToDate.Format(domain.DateLayout), record.PerformedBy,
			).Scan(&record.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to record rollover: %w", err)
			}
		}
		return insertHistory(ctx, tx, entry)
	})
}

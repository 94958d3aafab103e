package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type historyRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *historyRepository {
	return &historyRepository{db: db}
}

// insertHistory appends an audit entry inside the caller's transaction.
func insertHistory(ctx context.Context, tx *sqlx.Tx, entry *domain.HistoryEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `
		INSERT INTO bin_history (id, team_id, type, description, details, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := tx.QueryRowxContext(ctx, query,
		entry.ID, entry.TeamID, entry.Type, entry.Description, entry.Details, entry.CreatedBy,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func (r *historyRepository) ListHistory(ctx context.Context, teamID string, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, team_id, type, description, details, created_by, created_at
		FROM bin_history
		WHERE team_id = $1 AND type <> 'note'
		ORDER BY created_at DESC
		LIMIT $2
	`
	var entries []domain.HistoryEntry
	err := r.db.Do(ctx, func(ctx context.Context) error {
		entries = entries[:0]
		return r.db.SelectContext(ctx, &entries, query, teamID, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

func (r *historyRepository) UpsertNote(ctx context.Context, teamID, text, author string) error {
	query := `
		INSERT INTO bin_history (id, team_id, type, description, details, created_by, created_at)
		VALUES ($1, $2, 'note', $3, '{}'::jsonb, $4, NOW())
		ON CONFLICT (team_id) WHERE type = 'note'
		DO UPDATE SET
			description = EXCLUDED.description,
			created_by = EXCLUDED.created_by,
			created_at = NOW()
	`
	return r.db.Do(ctx, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), teamID, text, author); err != nil {
			return fmt.Errorf("failed to save note: %w", err)
		}
		return nil
	})
}

func (r *historyRepository) GetNote(ctx context.Context, teamID string) (string, error) {
	var text string
	err := r.db.Do(ctx, func(ctx context.Context) error {
		err := r.db.GetContext(ctx, &text,
			`SELECT description FROM bin_history WHERE team_id = $1 AND type = 'note'`, teamID)
		if errors.Is(err, sql.ErrNoRows) {
			text = ""
			return nil
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to load note: %w", err)
	}
	return text, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type stockRepository struct {
	db *DB
}

func NewStockRepository(db *DB) *stockRepository {
	return &stockRepository{db: db}
}

const stockColumns = `id, team_id, name, category, opening_stock, added_today, packed, lost, alert_level, price, color, updated_at`

func (r *stockRepository) ListStockItems(ctx context.Context, teamID string) ([]domain.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE team_id = $1 ORDER BY lower(name)`
	var items []domain.StockItem
	err := r.db.Do(ctx, func(ctx context.Context) error {
		items = items[:0]
		return r.db.SelectContext(ctx, &items, query, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	return items, nil
}

func (r *stockRepository) GetStockItemByName(ctx context.Context, teamID, name string) (*domain.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE team_id = $1 AND lower(name) = lower($2)`
	var item domain.StockItem
	err := r.db.Do(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &item, query, teamID, strings.TrimSpace(name))
	})
	if err != nil {
		return nil, translate(err, "stock item "+name)
	}
	return &item, nil
}

func (r *stockRepository) UpsertStockItem(ctx context.Context, item *domain.StockItem, activity *domain.ActivityEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := upsertItem(ctx, tx, item); err != nil {
			return err
		}
		return insertActivity(ctx, tx, activity)
	})
}

func (r *stockRepository) UpsertStockItems(ctx context.Context, items []domain.StockItem, activity *domain.ActivityEntry) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i := range items {
			if err := upsertItem(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return insertActivity(ctx, tx, activity)
	})
}

func upsertItem(ctx context.Context, tx *sqlx.Tx, item *domain.StockItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `
		INSERT INTO stock_items (
			id, team_id, name, category, opening_stock, added_today,
			packed, lost, alert_level, price, color, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			opening_stock = EXCLUDED.opening_stock,
			added_today = EXCLUDED.added_today,
			packed = EXCLUDED.packed,
			lost = EXCLUDED.lost,
			alert_level = EXCLUDED.alert_level,
			price = EXCLUDED.price,
			color = EXCLUDED.color,
			updated_at = NOW()
		RETURNING updated_at
	`
	err := tx.QueryRowxContext(ctx, query,
		item.ID, item.TeamID, item.Name, item.Category, item.OpeningStock, item.AddedToday,
		item.Packed, item.Lost, item.AlertLevel, item.Price, item.Color,
	).Scan(&item.UpdatedAt)
	if err != nil {
		return translate(err, "stock item "+item.Name)
	}
	return nil
}

func insertActivity(ctx context.Context, tx *sqlx.Tx, entry *domain.ActivityEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `
		INSERT INTO activity_log (id, team_id, item_name, action, field, quantity, amount, details, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`
	err := tx.QueryRowxContext(ctx, query,
		entry.ID, entry.TeamID, entry.ItemName, entry.Action, entry.Field,
		entry.Quantity, entry.Amount, entry.Details, entry.CreatedBy,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (r *stockRepository) ListActivity(ctx context.Context, teamID string, from, to time.Time, limit int) ([]domain.ActivityEntry, error) {
	query := `
		SELECT id, team_id, item_name, action, field, quantity, amount, details, created_by, created_at
		FROM activity_log
		WHERE team_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`
	args := []interface{}{teamID, from, to}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	var entries []domain.ActivityEntry
	err := r.db.Do(ctx, func(ctx context.Context) error {
		entries = entries[:0]
		return r.db.SelectContext(ctx, &entries, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}

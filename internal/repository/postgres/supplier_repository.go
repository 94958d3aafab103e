package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) *supplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) ListSuppliers(ctx context.Context, teamID string) ([]domain.Supplier, error) {
	query := `SELECT id, team_id, name, balance, created_at FROM suppliers WHERE team_id = $1 ORDER BY name`
	var suppliers []domain.Supplier
	err := r.db.Do(ctx, func(ctx context.Context) error {
		suppliers = suppliers[:0]
		return r.db.SelectContext(ctx, &suppliers, query, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *supplierRepository) RecordCreditPurchase(ctx context.Context, credit *domain.CreditTransaction) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Upsert supplier and bump its balance
		query := `
			INSERT INTO suppliers (id, team_id, name, balance, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (team_id, lower(name))
			DO UPDATE SET balance = suppliers.balance + EXCLUDED.balance
			RETURNING id, team_id, name, balance, created_at
		`
		err := tx.QueryRowxContext(ctx, query,
			uuid.NewString(), credit.TeamID, credit.SupplierName, credit.Total,
		).StructScan(&supplier)
		if err != nil {
			return fmt.Errorf("failed to upsert supplier: %w", err)
		}

		// 2. Store the transaction
		if credit.ID == "" {
			credit.ID = uuid.NewString()
		}
		credit.SupplierID = supplier.ID
		credit.SupplierName = supplier.Name
		query = `
			INSERT INTO credit_transactions (id, team_id, supplier_id, item_name, quantity, unit_price, total, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			RETURNING created_at
		`
		err = tx.QueryRowxContext(ctx, query,
			credit.ID, credit.TeamID, credit.SupplierID, credit.ItemName,
			credit.Quantity, credit.UnitPrice, credit.Total, credit.CreatedBy,
		).Scan(&credit.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert credit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) ListCreditTransactions(ctx context.Context, teamID string, from, to time.Time) ([]domain.CreditTransaction, error) {
	query := `
		SELECT ct.id, ct.team_id, ct.supplier_id, s.name AS supplier_name, ct.item_name,
			ct.quantity, ct.unit_price, ct.total, ct.created_by, ct.created_at
		FROM credit_transactions ct
		JOIN suppliers s ON s.id = ct.supplier_id
		WHERE ct.team_id = $1 AND ct.created_at >= $2 AND ct.created_at < $3
		ORDER BY ct.created_at
	`
	var txs []domain.CreditTransaction
	err := r.db.Do(ctx, func(ctx context.Context) error {
		txs = txs[:0]
		return r.db.SelectContext(ctx, &txs, query, teamID, from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list credit transactions: %w", err)
	}
	return txs, nil
}

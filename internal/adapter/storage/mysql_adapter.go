package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

type MySQLAdapter struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{
		db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (m *MySQLAdapter) FindByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := m.db.QueryRowContext(ctx, `
		SELECT id, product_id, quantity, version, created_at, updated_at
		FROM inventory WHERE product_id = ?`, productID,
	).Scan(&inv.ID, &inv.ProductID, &inv.Quantity, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	return &inv, nil
}

func (m *MySQLAdapter) Save(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	inv.Product = nil
	if inv.ID == 0 {
		return m.insert(ctx, inv)
	}
	return m.update(ctx, inv)
}

func (m *MySQLAdapter) insert(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	now := m.now()
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory (product_id, quantity, version, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)`,
		inv.ProductID, inv.Quantity, now, now,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, ErrOptimisticLock
		}
		return nil, fmt.Errorf("insert inventory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inventory id: %w", err)
	}

	inv.ID = id
	inv.Version = 1
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return &inv, nil
}

func (m *MySQLAdapter) update(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	now := m.now()
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		inv.Quantity, now, inv.ID, inv.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrOptimisticLock
	}

	inv.Version++
	inv.UpdatedAt = now
	return &inv, nil
}

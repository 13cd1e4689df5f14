package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

// inventoryRow is the GORM model behind GormStore.
type inventoryRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex"`
	Quantity  int       `gorm:"column:quantity;not null;default:0;check:quantity >= 0"`
	Version   int       `gorm:"column:version;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (inventoryRow) TableName() string { return "inventory" }

func (r inventoryRow) toDomain() *domain.Inventory {
	return &domain.Inventory{
		ID:        r.ID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// GormStore persists inventory through GORM (Postgres in deployments,
// SQLite for local runs and tests).
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// AutoMigrate creates or updates the inventory table.
func (g *GormStore) AutoMigrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&inventoryRow{}); err != nil {
		return fmt.Errorf("auto migrate inventory: %w", err)
	}
	return nil
}

func (g *GormStore) FindByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	var row inventoryRow
	err := g.db.WithContext(ctx).Where("product_id = ?", productID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return row.toDomain(), nil
}

func (g *GormStore) Save(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	now := g.now()
	if inv.ID == 0 {
		return g.insert(ctx, inv, now)
	}

	result := g.db.WithContext(ctx).
		Model(&inventoryRow{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]any{
			"quantity":   inv.Quantity,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update inventory: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrOptimisticLock
	}

	inv.Version++
	inv.UpdatedAt = now
	inv.Product = nil
	return &inv, nil
}

func (g *GormStore) insert(ctx context.Context, inv domain.Inventory, now time.Time) (*domain.Inventory, error) {
	row := inventoryRow{
		ProductID: inv.ProductID,
		Quantity:  inv.Quantity,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// a concurrent insert for the same product loses on the unique index
	var count int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&inventoryRow{}).Where("product_id = ?", inv.ProductID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOptimisticLock
		}
		return tx.Create(&row).Error
	})
	if errors.Is(err, ErrOptimisticLock) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrOptimisticLock
	}
	if err != nil {
		return nil, fmt.Errorf("insert inventory: %w", err)
	}
	return row.toDomain(), nil
}

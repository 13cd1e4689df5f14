package port

import (
	"context"
	"errors"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

// ErrStaleRecord is matched by store errors raised when a versioned write
// lost against a concurrent writer.
var ErrStaleRecord = errors.New("stale inventory record")

type InventoryStore interface {
	// FindByProductID returns the record for productID, or nil when none exists
	FindByProductID(ctx context.Context, productID int64) (*domain.Inventory, error)

	// Save inserts the record when ID is zero and otherwise updates it with a
	// version check; the returned copy carries the assigned ID and new version
	Save(ctx context.Context, inventory domain.Inventory) (*domain.Inventory, error)
}

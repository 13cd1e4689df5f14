package domain

import (
	"math"
	"time"
)

// MaxQuantity is the largest stock level a record may hold. Every store
// column and wire field is 32-bit.
const MaxQuantity = math.MaxInt32

// Inventory is the stock record kept for a single catalog product.
type Inventory struct {
	ID        int64
	ProductID int64
	Quantity  int
	Version   int // optimistic locking
	CreatedAt time.Time
	UpdatedAt time.Time

	// Product is attached for responses only and is never persisted.
	Product *Product
}

// PurchaseResult describes a completed purchase.
type PurchaseResult struct {
	ProductID         int64
	ProductName       string
	QuantityPurchased int
	RemainingStock    int
}

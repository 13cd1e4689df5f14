package port

import (
	"context"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

type ProductLookup interface {
	// GetProduct returns nil without error when the catalog has no such product.
	// Every other failure is a domain.FaultUpstreamUnavailable fault.
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
}

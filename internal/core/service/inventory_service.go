package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/port"
	"github.com/rl1809/inventory-service/pkg/logger"
	"github.com/rl1809/inventory-service/pkg/metrics"
)

// InventoryService reconciles local stock records with the product catalog.
// Operations on the same product are serialized in-process; the store's
// versioned Save guards writers in other processes.
type InventoryService struct {
	catalog port.ProductLookup
	store   port.InventoryStore
	locks   *keyLock
	logg    *logger.Logger
	metrics *metrics.InventoryMetrics
}

type Option func(*InventoryService)

func WithLogger(logg *logger.Logger) Option {
	return func(s *InventoryService) {
		s.logg = logg
	}
}

func WithMetrics(m *metrics.InventoryMetrics) Option {
	return func(s *InventoryService) {
		s.metrics = m
	}
}

func NewInventoryService(catalog port.ProductLookup, store port.InventoryStore, opts ...Option) *InventoryService {
	s := &InventoryService{
		catalog: catalog,
		store:   store,
		locks:   newKeyLock(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GetByProductID returns the stock record for productID enriched with the
// live product. A valid product without a record gets a zero-quantity one.
func (s *InventoryService) GetByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	ctx = s.logg.WithProductID(ctx, productID)

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, productID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	inv, err := s.store.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find inventory: %w", err)
	}
	if inv == nil {
		inv, err = s.save(ctx, domain.Inventory{ProductID: productID, Quantity: 0})
		if err != nil {
			return nil, err
		}
		s.logg.Info(ctx, "inventory.created")
	}

	inv.Product = product
	return inv, nil
}

// UpdateQuantity sets the stock level for productID, creating the record
// if needed.
func (s *InventoryService) UpdateQuantity(ctx context.Context, productID int64, quantity int) (*domain.Inventory, error) {
	if quantity < 0 {
		return nil, domain.NewFault(domain.FaultInvalidRequest, "Quantity must not be negative")
	}
	if quantity > domain.MaxQuantity {
		return nil, domain.NewFault(domain.FaultInvalidRequest,
			fmt.Sprintf("Quantity must not exceed %d", domain.MaxQuantity))
	}
	ctx = s.logg.WithProductID(ctx, productID)

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, productID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.store.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find inventory: %w", err)
	}

	var inv domain.Inventory
	if current != nil {
		inv = *current
	} else {
		inv = domain.Inventory{ProductID: productID}
	}
	inv.Quantity = quantity

	saved, err := s.save(ctx, inv)
	if err != nil {
		return nil, err
	}
	saved.Product = product

	ctx = s.logg.WithField(ctx, "quantity", quantity)
	s.logg.Info(ctx, "inventory.quantity.updated")
	return saved, nil
}

// Purchase removes quantity units of productID from stock. Faults are
// reported in order: invalid quantity, unknown product, missing inventory,
// insufficient stock.
func (s *InventoryService) Purchase(ctx context.Context, productID int64, quantity int) (*domain.PurchaseResult, error) {
	result, err := s.purchase(ctx, productID, quantity)
	if err != nil {
		outcome := metrics.OutcomeError
		if kind := domain.KindOf(err); kind != "" {
			outcome = string(kind)
		}
		s.metrics.ObservePurchase(outcome, quantity)

		ctx = s.logg.WithFields(ctx, map[string]any{
			"product_id": productID,
			"quantity":   quantity,
			"fault":      string(domain.KindOf(err)),
		})
		if domain.AsFault(err) != nil {
			s.logg.Warn(ctx, "inventory.purchase.rejected")
		} else {
			s.logg.Error(ctx, "inventory.purchase.failed", err)
		}
		return nil, err
	}

	s.metrics.ObservePurchase(metrics.OutcomeSuccess, quantity)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_id":      productID,
		"quantity":        quantity,
		"remaining_stock": result.RemainingStock,
	})
	s.logg.Info(ctx, "inventory.purchase.completed")
	return result, nil
}

func (s *InventoryService) purchase(ctx context.Context, productID int64, quantity int) (*domain.PurchaseResult, error) {
	if quantity <= 0 {
		return nil, domain.NewFault(domain.FaultInvalidRequest, "Quantity must be greater than zero")
	}

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, productID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	inv, err := s.store.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find inventory: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFoundFault(domain.ResourceInventory,
			fmt.Sprintf("No inventory found for product ID: %d", productID))
	}

	if inv.Quantity < quantity {
		return nil, domain.NewFault(domain.FaultInsufficientStock,
			fmt.Sprintf("Insufficient inventory for product ID: %d", productID))
	}

	inv.Quantity -= quantity
	saved, err := s.save(ctx, *inv)
	if err != nil {
		return nil, err
	}

	return &domain.PurchaseResult{
		ProductID:         product.ID,
		ProductName:       product.Name,
		QuantityPurchased: quantity,
		RemainingStock:    saved.Quantity,
	}, nil
}

// lookupProduct turns an absent catalog entry into a product NotFound fault.
// Catalog faults are returned unchanged.
func (s *InventoryService) lookupProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundFault(domain.ResourceProduct,
			fmt.Sprintf("Product with ID %d not found", productID))
	}
	return product, nil
}

func (s *InventoryService) save(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	saved, err := s.store.Save(ctx, inv)
	if errors.Is(err, port.ErrStaleRecord) {
		return nil, domain.WrapFault(domain.FaultConflict, err,
			fmt.Sprintf("Inventory for product ID %d was modified concurrently", inv.ProductID))
	}
	if err != nil {
		return nil, fmt.Errorf("save inventory: %w", err)
	}
	return saved, nil
}

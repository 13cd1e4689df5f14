package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

// MemoryStore keeps inventory records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]domain.Inventory
	nextID  int64
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]domain.Inventory),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) FindByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.records[productID]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (m *MemoryStore) Save(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	current, exists := m.records[inv.ProductID]

	if inv.ID == 0 {
		if exists {
			return nil, ErrOptimisticLock
		}
		m.nextID++
		inv.ID = m.nextID
		inv.Version = 1
		inv.CreatedAt = now
	} else {
		if !exists || current.ID != inv.ID || current.Version != inv.Version {
			return nil, ErrOptimisticLock
		}
		inv.Version = current.Version + 1
		inv.CreatedAt = current.CreatedAt
	}
	inv.UpdatedAt = now
	inv.Product = nil

	m.records[inv.ProductID] = inv
	return &inv, nil
}

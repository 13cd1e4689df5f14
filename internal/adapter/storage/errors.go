package storage

import (
	"fmt"

	"github.com/rl1809/inventory-service/internal/port"
)

// ErrOptimisticLock is returned by Save when the stored version no longer
// matches, or when a second record is inserted for the same product.
var ErrOptimisticLock = fmt.Errorf("optimistic lock conflict: %w", port.ErrStaleRecord)

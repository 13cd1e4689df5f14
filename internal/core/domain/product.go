package domain

import "github.com/shopspring/decimal"

// Product is a read-only snapshot of a catalog entry.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Description string
}

package ports

import (
	"context"
	"storefront/internal/types"
)

// Inventory is the remote stock and product lookup.
// Implementations MUST return types.ErrNotFound for unknown products.
type Inventory interface {
	Stock(ctx context.Context, productID int64) (types.StockRecord, error)
	Product(ctx context.Context, productID int64) (types.Product, error)
}

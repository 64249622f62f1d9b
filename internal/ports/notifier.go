package ports

import (
	"context"
	"storefront/internal/types"
)

// Notifier shows a message to the user. Delivery is best-effort; a failed
// notification never fails the cart operation that produced it.
type Notifier interface {
	Notify(ctx context.Context, n types.Notification) error
}

package notify

import (
	"context"
	"errors"

	"storefront/internal/ports"
	"storefront/internal/types"
)

// Multi fans a notification out to several sinks. Every sink is tried; the
// errors of the failing ones are joined.
type Multi []ports.Notifier

func (m Multi) Notify(ctx context.Context, n types.Notification) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

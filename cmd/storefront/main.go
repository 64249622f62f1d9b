package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/api"
	"storefront/internal/backends"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/inventory"
	"storefront/internal/notify"
	"storefront/internal/ports"
	"storefront/internal/types"

	log "github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnvFile()
	if err := config.SetupLogging(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	kv, closeKV, err := backends.StorageFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeKV()

	inv := inventory.NewClient(cfg.Inventory, nil)
	checkInventory(ctx, inv)

	notifier, err := notifierFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize notifications: %v", err)
	}

	store, err := cart.New(ctx, kv, inv, cart.Options{
		Key:      cfg.StorageKey,
		Compress: cfg.Compress,
		Notifier: notifier,
	})
	if err != nil {
		log.Fatalf("Failed to load cart: %v", err)
	}
	unsubscribe := store.Subscribe(func(c types.Cart) {
		log.WithFields(log.Fields{
			"items": c.Count(),
			"total": c.Total().StringFixed(2),
		}).Debug("cart changed")
	})
	defer unsubscribe()

	stop, done := api.RunServerInterruptible(cfg.Port, api.NewHandler(store, cfg.CurrencyUnit()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.WithField("signal", s.String()).Info("shutting down")
		close(stop)
		err = <-done
	case err = <-done:
	}
	if err != nil {
		log.WithError(err).Error("server stopped")
	}
}

// notifierFromConfig always logs notifications and additionally publishes
// them to SNS when a topic is configured.
func notifierFromConfig(ctx context.Context, cfg types.Config) (ports.Notifier, error) {
	sinks := notify.Multi{notify.NewLog(log.StandardLogger())}
	if cfg.SNSTopicArn != "" {
		snsClient, err := backends.SNSClientFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, notify.NewSNS(snsClient, cfg.SNSTopicArn))
	}
	return sinks, nil
}

// checkInventory logs whether the inventory service answers. The service
// starts either way; every operation looks stock up again.
func checkInventory(ctx context.Context, inv *inventory.Client) {
	records, err := inv.AllStock(ctx)
	if err != nil {
		log.WithError(err).WithField("inventory", inv.String()).Warn("inventory not reachable at startup")
		return
	}
	log.WithFields(log.Fields{
		"inventory": inv.String(),
		"products":  len(records),
	}).Info("inventory reachable")
}

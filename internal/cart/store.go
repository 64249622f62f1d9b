package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/ports"
	"storefront/internal/types"

	log "github.com/sirupsen/logrus"
)

// Store is the cart state container. It owns the ordered line item list,
// validates every mutation against fresh stock and persists the whole list
// after each successful mutation.
//
// Operations are serialized: a second call waits until the first one,
// including its remote lookups, has finished.
type Store struct {
	opMu sync.Mutex

	stateMu sync.RWMutex
	cart    types.Cart

	key       string
	codec     Codec
	kv        ports.KVStore
	inventory ports.Inventory
	notifier  ports.Notifier

	obsMu     sync.Mutex
	observers map[int]func(types.Cart)
	nextObsID int
}

type Options struct {
	// Key is the storage key of the serialized cart. Defaults to types.DefaultStorageKey.
	Key      string
	Compress bool
	// Notifier receives one notification per completed operation. May be nil.
	Notifier ports.Notifier
}

// New creates a Store and loads the persisted cart, if any.
func New(ctx context.Context, kv ports.KVStore, inventory ports.Inventory, opts Options) (*Store, error) {
	if kv == nil || inventory == nil {
		return nil, fmt.Errorf("kv store and inventory are required")
	}
	if opts.Key == "" {
		opts.Key = types.DefaultStorageKey
	}
	s := &Store{
		key:       opts.Key,
		codec:     Codec{Compress: opts.Compress},
		kv:        kv,
		inventory: inventory,
		notifier:  opts.Notifier,
		observers: make(map[int]func(types.Cart)),
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory cart with the persisted one. A missing key
// yields an empty cart.
func (s *Store) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	items := []types.LineItem{}
	b, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, types.ErrNotFound):
	case err != nil:
		return types.Err(types.ErrDataStoreAccess, err, "get %s", s.key)
	default:
		items, err = s.codec.Decode(b)
		if err != nil {
			return fmt.Errorf("codec.Decode: %w", err)
		}
	}

	s.stateMu.Lock()
	s.cart = types.Cart{Items: items}
	s.stateMu.Unlock()

	log.WithFields(log.Fields{
		"key":   s.key,
		"items": len(items),
	}).Debug("cart loaded")
	return nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() types.Cart {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.cart.Clone()
}

// Subscribe registers fn to receive a snapshot after every successful
// mutation. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(types.Cart)) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

// AddItem adds one unit of productID. A product already in the cart is
// incremented; a new one is looked up and appended with amount 1. Both
// paths require the resulting amount to be in stock.
func (s *Store) AddItem(ctx context.Context, productID int64) error {
	snap, err := s.addItem(ctx, productID)
	return s.finish(ctx, productID, types.Added, snap, err)
}

// RemoveItem drops productID from the cart. Removing a product that is not
// in the cart fails with KindRemoveFailed and changes nothing.
func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	snap, err := s.removeItem(ctx, productID)
	return s.finish(ctx, productID, types.Removed, snap, err)
}

// UpdateAmount sets the amount of productID. Amounts <= 0 and products not
// in the cart are ignored without a notification; applied is false then.
func (s *Store) UpdateAmount(ctx context.Context, productID int64, amount int) (applied bool, err error) {
	snap, err := s.updateAmount(ctx, productID, amount)
	return snap != nil, s.finish(ctx, productID, types.Updated, snap, err)
}

func (s *Store) addItem(ctx context.Context, productID int64) (*types.Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	next := s.Cart()
	idx := next.Find(productID)
	want := 1
	if idx >= 0 {
		want = next.Items[idx].Amount + 1
	}

	stock, err := s.inventory.Stock(ctx, productID)
	if err != nil {
		return nil, types.NewCartError(types.KindAddFailed, productID, fmt.Errorf("inventory.Stock: %w", err))
	}
	if stock.Amount < want {
		return nil, types.NewCartError(types.KindOutOfStock, productID,
			fmt.Errorf("requested %d, available %d", want, stock.Amount))
	}

	if idx >= 0 {
		next.Items[idx].Amount = want
	} else {
		p, err := s.inventory.Product(ctx, productID)
		if err != nil {
			return nil, types.NewCartError(types.KindAddFailed, productID, fmt.Errorf("inventory.Product: %w", err))
		}
		item := types.NewLineItem(p)
		item.ID = productID
		next.Items = append(next.Items, item)
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, types.NewCartError(types.KindAddFailed, productID, err)
	}
	return &next, nil
}

func (s *Store) removeItem(ctx context.Context, productID int64) (*types.Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur := s.Cart()
	idx := cur.Find(productID)
	if idx < 0 {
		return nil, types.NewCartError(types.KindRemoveFailed, productID, types.ErrNotFound)
	}

	next := types.Cart{Items: make([]types.LineItem, 0, len(cur.Items)-1)}
	next.Items = append(next.Items, cur.Items[:idx]...)
	next.Items = append(next.Items, cur.Items[idx+1:]...)

	if err := s.commit(ctx, next); err != nil {
		return nil, types.NewCartError(types.KindRemoveFailed, productID, err)
	}
	return &next, nil
}

func (s *Store) updateAmount(ctx context.Context, productID int64, amount int) (*types.Cart, error) {
	if amount <= 0 {
		return nil, nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	next := s.Cart()
	idx := next.Find(productID)
	if idx < 0 {
		return nil, nil
	}

	stock, err := s.inventory.Stock(ctx, productID)
	if err != nil {
		return nil, types.NewCartError(types.KindUpdateFailed, productID, fmt.Errorf("inventory.Stock: %w", err))
	}
	if stock.Amount < amount {
		return nil, types.NewCartError(types.KindOutOfStock, productID,
			fmt.Errorf("requested %d, available %d", amount, stock.Amount))
	}
	if next.Items[idx].Amount == amount {
		return &next, nil
	}

	next.Items[idx].Amount = amount
	if err := s.commit(ctx, next); err != nil {
		return nil, types.NewCartError(types.KindUpdateFailed, productID, err)
	}
	return &next, nil
}

// commit persists next and only then makes it the current cart, so a failed
// write leaves memory and storage agreeing on the previous list.
func (s *Store) commit(ctx context.Context, next types.Cart) error {
	b, err := s.codec.Encode(next.Items)
	if err != nil {
		return fmt.Errorf("codec.Encode: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, b); err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "put %s", s.key)
	}
	s.stateMu.Lock()
	s.cart = next.Clone()
	s.stateMu.Unlock()
	return nil
}

// finish converts the outcome of an operation into a notification, informs
// observers on success and returns err unchanged.
func (s *Store) finish(ctx context.Context, productID int64, ok types.Signal, snap *types.Cart, err error) error {
	if err != nil {
		kind := types.KindOf(err)
		log.WithError(err).WithFields(log.Fields{
			"productID": productID,
			"kind":      kind.String(),
		}).Warn("cart operation failed")
		s.notify(ctx, types.NewNotification(types.SignalFor(kind), productID))
		return err
	}
	if snap == nil {
		log.WithField("productID", productID).Debug("cart operation ignored")
		return nil
	}

	log.WithFields(log.Fields{
		"productID": productID,
		"signal":    ok.String(),
		"items":     snap.Count(),
	}).Info("cart updated")
	s.notify(ctx, types.NewNotification(ok, productID))

	s.obsMu.Lock()
	observers := make([]func(types.Cart), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range observers {
		fn(snap.Clone())
	}
	return nil
}

func (s *Store) notify(ctx context.Context, n types.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.WithError(err).WithField("signal", n.Signal).Warn("failed to deliver notification")
	}
}

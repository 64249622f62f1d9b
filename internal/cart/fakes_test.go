package cart

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/types"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockInventory struct {
	mock.Mock
}

func (m *mockInventory) Stock(ctx context.Context, productID int64) (types.StockRecord, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(types.StockRecord), args.Error(1)
}

func (m *mockInventory) Product(ctx context.Context, productID int64) (types.Product, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(types.Product), args.Error(1)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []types.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n types.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) signals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Signal)
	}
	return out
}

// failingKV wraps a store and fails every Put once armed.
type failingKV struct {
	inner interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Put(ctx context.Context, key string, value []byte) error
		Delete(ctx context.Context, key string) error
	}
	failPut bool
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	return f.inner.Get(ctx, key)
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.inner.Put(ctx, key, value)
}

func (f *failingKV) Delete(ctx context.Context, key string) error {
	return f.inner.Delete(ctx, key)
}

func randomProduct(id int64) types.Product {
	return types.Product{
		ID:    id,
		Title: gofakeit.ProductName(),
		Price: decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		Image: gofakeit.URL(),
	}
}

func lineItem(p types.Product, amount int) types.LineItem {
	li := types.NewLineItem(p)
	li.Amount = amount
	return li
}

package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrInvalidBackend  = errors.New("invalid backend")
	ErrDataStoreAccess = errors.New("data store read/write error")
	ErrInventoryAccess = errors.New("inventory lookup error")
	ErrCorruptCart     = errors.New("corrupt persisted cart")

	ErrOutOfStock   = errors.New("requested amount out of stock")
	ErrAddFailed    = errors.New("add item failed")
	ErrRemoveFailed = errors.New("remove item failed")
	ErrUpdateFailed = errors.New("update amount failed")
)

func Err(typedError error, innerErr error, msgTemplate string, args ...any) error {
	if msgTemplate == "" {
		return errors.Join(typedError, innerErr)
	}
	return errors.Join(typedError, innerErr, fmt.Errorf(msgTemplate, args...))
}

// Kind classifies the failure of a cart operation. Every kind maps to one
// user-facing message.
type Kind int

const (
	KindUnknown Kind = iota
	KindOutOfStock
	KindAddFailed
	KindRemoveFailed
	KindUpdateFailed
)

var kindSentinels = map[Kind]error{
	KindOutOfStock:   ErrOutOfStock,
	KindAddFailed:    ErrAddFailed,
	KindRemoveFailed: ErrRemoveFailed,
	KindUpdateFailed: ErrUpdateFailed,
}

var kindText = map[Kind]string{
	KindUnknown:      "unknown",
	KindOutOfStock:   "out_of_stock",
	KindAddFailed:    "add_failed",
	KindRemoveFailed: "remove_failed",
	KindUpdateFailed: "update_failed",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return kindText[KindUnknown]
}

// CartError is returned by every failed cart operation.
type CartError struct {
	Kind      Kind
	ProductID int64
	Err       error
}

func NewCartError(kind Kind, productID int64, inner error) *CartError {
	return &CartError{Kind: kind, ProductID: productID, Err: inner}
}

func (e *CartError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: product %d", e.Kind, e.ProductID)
	}
	return fmt.Sprintf("%s: product %d: %v", e.Kind, e.ProductID, e.Err)
}

func (e *CartError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrOutOfStock) and friends match on Kind.
func (e *CartError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var ce *CartError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

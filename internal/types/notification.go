package types

import (
	"time"

	"github.com/google/uuid"
)

// Signal is what a cart operation reports to the user once it completes.
type Signal int

const (
	Added Signal = iota
	Removed
	Updated
	OutOfStock
	AddFailed
	RemoveFailed
	UpdateFailed
)

var SignalTextMap = map[Signal]string{
	Added:        "added",
	Removed:      "removed",
	Updated:      "updated",
	OutOfStock:   "out_of_stock",
	AddFailed:    "add_failed",
	RemoveFailed: "remove_failed",
	UpdateFailed: "update_failed",
}

// SignalMessages are the user-facing texts, one per signal.
var SignalMessages = map[Signal]string{
	Added:        "Product added to cart.",
	Removed:      "Product removed from cart.",
	Updated:      "Quantity updated.",
	OutOfStock:   "Requested quantity is out of stock.",
	AddFailed:    "Could not add product.",
	RemoveFailed: "Could not remove product.",
	UpdateFailed: "Could not update product quantity.",
}

func (s Signal) String() string { return SignalTextMap[s] }

// IsError reports whether s is a failure signal.
func (s Signal) IsError() bool { return s >= OutOfStock }

// SignalFor maps a failure kind to its signal.
func SignalFor(k Kind) Signal {
	switch k {
	case KindOutOfStock:
		return OutOfStock
	case KindRemoveFailed:
		return RemoveFailed
	case KindUpdateFailed:
		return UpdateFailed
	default:
		return AddFailed
	}
}

// Notification is a fire-and-forget message for the user.
type Notification struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Signal    string    `json:"signal"`
	ProductID int64     `json:"product_id"`
	Message   string    `json:"message"`
	Error     bool      `json:"error"`
}

func NewNotification(s Signal, productID int64) Notification {
	return Notification{
		ID:        uuid.NewString(),
		At:        time.Now().UTC(),
		Signal:    s.String(),
		ProductID: productID,
		Message:   SignalMessages[s],
		Error:     s.IsError(),
	}
}

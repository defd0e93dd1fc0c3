package catalog

import (
	"context"
	"errors"
)

var (
	// ErrStorageUnavailable means the backing storage could not be
	// created, read or written. Fatal at startup, a 500 afterwards.
	ErrStorageUnavailable = errors.New("catalog storage unavailable")

	// ErrCorruptData means the backing storage exists but does not hold
	// a well-formed catalog document. Never repaired automatically.
	ErrCorruptData = errors.New("catalog document corrupt")
)

// Store owns the product collection. Implementations serialize mutations
// so overlapping read-modify-write cycles cannot drop an update.
type Store interface {
	// Initialize prepares the backing storage. Idempotent; never
	// discards existing data.
	Initialize(ctx context.Context) error

	Ping(ctx context.Context) error

	// LoadAll returns the full collection in stored order.
	LoadAll(ctx context.Context) ([]Product, error)

	// ReplaceAll overwrites the whole collection with the given
	// products, verbatim order. The caller is trusted not to submit
	// duplicate ids on this path.
	ReplaceAll(ctx context.Context, products []Product) error

	// Upsert inserts p at the front of the collection, or replaces the
	// existing product in place when p.ID is already present. An empty
	// ID gets a freshly generated unique one. Returns the stored
	// product with its final ID.
	Upsert(ctx context.Context, p Product) (Product, error)

	// Delete removes the product with the given id. Absent ids are a
	// no-op, not an error.
	Delete(ctx context.Context, id string) error
}

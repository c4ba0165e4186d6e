// Package store provides row-level access to the backing tabular
// resources. Row 1 of every resource is its header; data rows are
// addressed by 1-based position with the header excluded, so data row 1
// is physical row 2.
package store

import "context"

// RowStore defines the operations the mapper and sync engine need
// against a tabular backend.
type RowStore interface {
	// Headers returns the header row of the resource.
	Headers(ctx context.Context, resource string) ([]string, error)

	// Rows returns all data rows in insertion order.
	Rows(ctx context.Context, resource string) ([][]string, error)

	// Row returns the data row at the 1-based index.
	Row(ctx context.Context, resource string, index int) ([]string, error)

	// Append adds a data row at the bottom of the resource.
	Append(ctx context.Context, resource string, values []string) error

	// Update overwrites the data row at the 1-based index.
	Update(ctx context.Context, resource string, index int, values []string) error

	// Insert places a new data row at the 1-based index, shifting that
	// row and everything below it down by one position.
	Insert(ctx context.Context, resource string, index int, values []string) error

	// Delete removes the data row at the 1-based index, shifting
	// everything below it up by one position.
	Delete(ctx context.Context, resource string, index int) error

	// EnsureResource creates the resource with the given header row if
	// it does not exist, and writes the header when the tab is empty.
	EnsureResource(ctx context.Context, resource string, headers []string) error
}

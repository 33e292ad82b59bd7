// Package store persists dated journal entries in SQLite. The same
// repository backs both the client's local cache and the server's catalog,
// so entries round-trip between the two without transformation.
//
// Deletions are soft: a deleted entry stays in the table as a tombstone
// with its own modification timestamp, which is how deletions replicate.
// Tombstones are retained indefinitely.
//
// Persistence failures are wrapped in common.ErrStorage; callers can rely
// on the previous durable state being intact when one is returned.
package store

import (
	"context"
	"time"

	"github.com/mkravets/daybook/internal/journal"
)

// Store is the entry repository contract shared by the sync engine and the
// server hub. Every call is atomic with respect to the others; no
// cross-call atomicity is promised.
type Store interface {
	// Get returns the entry for a date, or common.ErrNotFound if the date
	// has no record or the record is a tombstone.
	Get(ctx context.Context, date string) (*journal.Entry, error)

	// Lookup is Get including tombstones: it fails with common.ErrNotFound
	// only if the date was never created.
	Lookup(ctx context.Context, date string) (*journal.Entry, error)

	// Put upserts by date, overwriting any existing record regardless of
	// timestamp order. The caller resolves conflicts before calling.
	Put(ctx context.Context, e *journal.Entry) error

	// PutIfNewer upserts only if e.ModifiedAt is strictly newer than the
	// stored record (or no record exists). It returns the winning
	// ModifiedAt and whether e was applied. Re-applying an identical
	// timestamp is a no-op, which makes pushes idempotent.
	PutIfNewer(ctx context.Context, e *journal.Entry) (time.Time, bool, error)

	// Delete tombstones the entry, stamping the tombstone with at. It
	// fails with common.ErrNotFound if there is no live record.
	Delete(ctx context.Context, date string, at time.Time) error

	// List returns all non-tombstoned entries, newest date first.
	List(ctx context.Context) ([]journal.Entry, error)

	// Catalog returns the date -> (ModifiedAt, Deleted) manifest over all
	// records, tombstones included.
	Catalog(ctx context.Context) (journal.Catalog, error)
}

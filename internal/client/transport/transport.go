// Package transport implements the client side of the sync wire protocol:
// a small HTTP API for listing, fetching, and pushing entries.
//
// Error mapping is the contract that matters here. Anything that smells of
// a network problem (connection failure, timeout, unexpected status,
// malformed body) comes back wrapped in common.ErrUnreachable so the sync
// engine can fall back to offline mode. common.ErrNotFound and
// common.ErrRejected are application-level answers from a healthy server
// and are reported as such.
package transport

import (
	"context"
	"time"

	"github.com/mkravets/daybook/internal/journal"
)

// Transport is the wire contract between a client and the sync server.
// All three operations are idempotent at the entry level.
type Transport interface {
	// FetchCatalog retrieves the server's manifest of dates and
	// modification timestamps, tombstones included.
	FetchCatalog(ctx context.Context) (journal.Catalog, error)

	// FetchEntry retrieves one entry. It fails with common.ErrNotFound if
	// the date was never created on the server.
	FetchEntry(ctx context.Context, date string) (*journal.Entry, error)

	// PushEntry uploads one entry and returns the server-accepted
	// ModifiedAt. If the server held a newer record, that record's
	// timestamp is returned instead, telling the caller its copy is stale.
	PushEntry(ctx context.Context, e *journal.Entry) (time.Time, error)
}

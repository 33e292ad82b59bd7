// Package hub implements the server-side sync authority: it serves the
// entry catalog and applies pushed entries with last-writer-wins
// semantics. It is the tie-break source of truth when two clients edited
// the same date.
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/mkravets/daybook/internal/journal"
	"github.com/mkravets/daybook/internal/logging"
	"github.com/mkravets/daybook/internal/store"
)

// Hub owns the server's entry store. Dates are independent, so pushes are
// serialized per date rather than behind one global lock.
type Hub struct {
	store  store.Store
	logger logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(st store.Store, logger logging.Logger) *Hub {
	return &Hub{
		store:  st,
		logger: logger.With("module", "sync_hub"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Catalog returns the manifest over every record the server holds,
// tombstones included, so a client can tell "deleted after my copy" from
// "never existed".
func (h *Hub) Catalog(ctx context.Context) (journal.Catalog, error) {
	return h.store.Catalog(ctx)
}

// GetEntry returns the record for a date, tombstones included. It fails
// with common.ErrNotFound only if the date was never created.
func (h *Hub) GetEntry(ctx context.Context, date string) (*journal.Entry, error) {
	return h.store.Lookup(ctx, date)
}

// AcceptPush applies last-writer-wins at the server boundary and returns
// the winning ModifiedAt. A push carrying an older timestamp than the
// stored record is accepted but loses: the stored record is kept and its
// timestamp returned, signaling the client that its copy is stale. A push
// is never partially applied.
func (h *Hub) AcceptPush(ctx context.Context, e *journal.Entry) (time.Time, error) {
	lock := h.dateLock(e.Date)
	lock.Lock()
	defer lock.Unlock()

	winner, applied, err := h.store.PutIfNewer(ctx, e)
	if err != nil {
		return time.Time{}, err
	}

	if !applied && winner.After(e.ModifiedAt) {
		h.logger.Debug(ctx, "stale push, keeping stored entry", "date", e.Date)
	}
	return winner, nil
}

// dateLock returns the mutex for a date, allocating it on first use.
// Tombstones are never physically removed, so the lock map only grows with
// the set of dates ever written.
func (h *Hub) dateLock(date string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.locks[date]
	if !ok {
		l = &sync.Mutex{}
		h.locks[date] = l
	}
	return l
}

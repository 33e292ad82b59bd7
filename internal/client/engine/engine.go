// Package engine implements the client sync engine: the state machine that
// reconciles the local entry store with the central server and absorbs
// connectivity failures so the view layer never has to.
//
// The engine starts offline and moves between three states:
//
//	Offline -> Syncing -> Online   (round completed)
//	        -> Syncing -> Offline  (server unreachable mid-round)
//
// Local mutations are accepted in any state; they are persisted
// immediately and queued in the dirty set for the next round. Conflicts
// are resolved last-writer-wins by modification timestamp: concurrent
// edits to the same date from two offline clients will silently keep only
// the newer side. That is a stated limitation of the design, not a bug to
// fix with a cleverer merge.
package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mkravets/daybook/internal/client/transport"
	"github.com/mkravets/daybook/internal/common"
	"github.com/mkravets/daybook/internal/journal"
	"github.com/mkravets/daybook/internal/logging"
	"github.com/mkravets/daybook/internal/store"
)

// State is the engine's connectivity state as observed by the view layer.
type State string

const (
	StateOffline State = "offline"
	StateSyncing State = "syncing"
	StateOnline  State = "online"
)

// Engine reconciles one local store with one server. A single Run loop
// drives sync rounds; rounds never overlap. UI mutations may interleave
// with an in-flight round, which is safe because every store operation is
// individually atomic and merges re-check timestamps at apply time.
type Engine struct {
	store     store.Store
	transport transport.Transport
	logger    logging.Logger
	clock     clockwork.Clock
	interval  time.Duration

	// kick carries manual refresh requests; capacity 1 makes concurrent
	// requests coalesce into a single extra round.
	kick chan struct{}

	mu           sync.Mutex
	state        State
	lastSyncedAt time.Time
	dirty        map[string]struct{}
}

// pushOutcome remembers what a round pushed for one date so step (d) can
// decide whether the date is settled.
type pushOutcome struct {
	sent     time.Time
	accepted time.Time
}

// New builds an engine. interval is the gap between scheduled rounds; the
// clock is injectable so tests can drive rounds deterministically.
func New(st store.Store, tr transport.Transport, logger logging.Logger, clock clockwork.Clock, interval time.Duration) *Engine {
	return &Engine{
		store:     st,
		transport: tr,
		logger:    logger.With("module", "sync_engine"),
		clock:     clock,
		interval:  interval,
		kick:      make(chan struct{}, 1),
		state:     StateOffline,
		dirty:     make(map[string]struct{}),
	}
}

// Run drives sync rounds until ctx is cancelled. It returns only after any
// in-flight round has finished or aborted, so shutdown never leaves a
// partial entry write observable.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.clock.After(e.interval):
		case <-e.kick:
		}
		e.syncOnce(ctx)
	}
}

// RequestSync asks for an out-of-schedule round. It never blocks; if a
// round is already queued or in flight the request is coalesced.
func (e *Engine) RequestSync() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// State reports the current connectivity state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastSyncedAt reports the time of the last successful round-trip, or the
// zero time if none has completed yet.
func (e *Engine) LastSyncedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSyncedAt
}

// List returns the visible (non-deleted) entries, newest date first.
func (e *Engine) List(ctx context.Context) ([]journal.Entry, error) {
	return e.store.List(ctx)
}

// Get returns the visible entry for a date.
func (e *Engine) Get(ctx context.Context, date string) (*journal.Entry, error) {
	date, err := journal.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return e.store.Get(ctx, date)
}

// Save creates or updates the entry for a date. The mutation is applied
// locally regardless of connectivity and queued for the next round.
func (e *Engine) Save(ctx context.Context, date, content string) error {
	date, err := journal.ParseDate(date)
	if err != nil {
		return err
	}

	entry := &journal.Entry{Date: date, Content: content, ModifiedAt: e.now()}
	if err := e.store.Put(ctx, entry); err != nil {
		return err
	}

	e.markDirty(date)
	return nil
}

// Delete tombstones the entry for a date so the deletion replicates.
func (e *Engine) Delete(ctx context.Context, date string) error {
	date, err := journal.ParseDate(date)
	if err != nil {
		return err
	}

	if err := e.store.Delete(ctx, date, e.now()); err != nil {
		return err
	}

	e.markDirty(date)
	return nil
}

// now stamps mutations at store precision so timestamps survive the
// SQLite round-trip unchanged.
func (e *Engine) now() time.Time {
	return e.clock.Now().UTC().Truncate(time.Millisecond)
}

func (e *Engine) markDirty(date string) {
	e.mu.Lock()
	e.dirty[date] = struct{}{}
	e.mu.Unlock()
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// syncOnce performs one full round: push the dirty set, fetch the catalog,
// pull everything the server holds newer, then settle the dirty set. Any
// unreachable error aborts the remaining steps and drops to Offline;
// effects already applied stay applied. The protocol is eventually
// consistent, not atomic.
func (e *Engine) syncOnce(ctx context.Context) {
	log := e.logger.With("round", uuid.NewString())
	e.setState(StateSyncing)

	pushed, err := e.pushDirty(ctx, log)
	if err != nil {
		e.abort(ctx, log, "push", err)
		return
	}

	catalog, err := e.transport.FetchCatalog(ctx)
	if err != nil {
		e.abort(ctx, log, "fetch catalog", err)
		return
	}

	merged, err := e.pullNewer(ctx, log, catalog)
	if err != nil {
		e.abort(ctx, log, "merge", err)
		return
	}

	settled := e.settle(ctx, pushed)

	e.mu.Lock()
	e.state = StateOnline
	e.lastSyncedAt = e.clock.Now()
	remaining := len(e.dirty)
	e.mu.Unlock()

	log.Info(ctx, "sync round complete",
		"pushed", len(pushed), "merged", merged, "settled", settled, "still_dirty", remaining)
}

func (e *Engine) abort(ctx context.Context, log logging.Logger, step string, err error) {
	e.setState(StateOffline)
	if errors.Is(err, common.ErrUnreachable) {
		log.Warn(ctx, "sync round aborted, going offline", "step", step, "error", err)
		return
	}
	log.Error(ctx, "sync round failed", "step", step, "error", err)
}

// pushDirty uploads every dirty entry, tombstones included. A stale push
// is still a successful push: the server answers with its newer timestamp
// and the catalog pull below repairs the local copy.
func (e *Engine) pushDirty(ctx context.Context, log logging.Logger) (map[string]pushOutcome, error) {
	e.mu.Lock()
	dates := make([]string, 0, len(e.dirty))
	for d := range e.dirty {
		dates = append(dates, d)
	}
	e.mu.Unlock()
	sort.Strings(dates)

	pushed := make(map[string]pushOutcome, len(dates))
	for _, date := range dates {
		entry, err := e.store.Lookup(ctx, date)
		if errors.Is(err, common.ErrNotFound) {
			// Dirty date without a record; nothing to replicate.
			e.mu.Lock()
			delete(e.dirty, date)
			e.mu.Unlock()
			continue
		}
		if err != nil {
			return pushed, err
		}

		accepted, err := e.transport.PushEntry(ctx, entry)
		if err != nil {
			return pushed, err
		}
		if accepted.After(entry.ModifiedAt) {
			log.Debug(ctx, "push was stale, server copy wins", "date", date)
		}
		pushed[date] = pushOutcome{sent: entry.ModifiedAt, accepted: accepted}
	}
	return pushed, nil
}

// pullNewer fetches and merges every entry the server holds with a newer
// ModifiedAt than the local copy. The store re-checks the timestamp at
// apply time, so an entry edited locally mid-round is not clobbered.
func (e *Engine) pullNewer(ctx context.Context, log logging.Logger, remote journal.Catalog) (int, error) {
	local, err := e.store.Catalog(ctx)
	if err != nil {
		return 0, err
	}

	dates := make([]string, 0, len(remote))
	for d := range remote {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	merged := 0
	for _, date := range dates {
		item := remote[date]
		if cur, ok := local[date]; ok && !item.ModifiedAt.After(cur.ModifiedAt) {
			continue
		}

		entry, err := e.transport.FetchEntry(ctx, date)
		if errors.Is(err, common.ErrNotFound) {
			log.Debug(ctx, "cataloged entry vanished, skipping", "date", date)
			continue
		}
		if err != nil {
			return merged, err
		}

		_, applied, err := e.store.PutIfNewer(ctx, entry)
		if err != nil {
			return merged, err
		}
		if applied {
			merged++
			log.Debug(ctx, "merged server entry", "date", date, "deleted", entry.Deleted)
		}
	}
	return merged, nil
}

// settle clears pushed dates from the dirty set. A date stays dirty if the
// UI remutated it after the push, i.e. the stored timestamp is newer than
// both what was sent and what the server accepted.
func (e *Engine) settle(ctx context.Context, pushed map[string]pushOutcome) int {
	settled := 0
	for date, outcome := range pushed {
		cur, err := e.store.Lookup(ctx, date)
		if err == nil && cur.ModifiedAt.After(outcome.sent) && cur.ModifiedAt.After(outcome.accepted) {
			continue
		}

		e.mu.Lock()
		delete(e.dirty, date)
		e.mu.Unlock()
		settled++
	}
	return settled
}

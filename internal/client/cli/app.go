package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkravets/daybook/internal/client/config"
	"github.com/mkravets/daybook/internal/client/engine"
	"github.com/mkravets/daybook/internal/client/transport"
	"github.com/mkravets/daybook/internal/journal"
	"github.com/mkravets/daybook/internal/logging"
	"github.com/mkravets/daybook/internal/store"

	_ "modernc.org/sqlite"
)

// App glues the local store, the sync engine and the REPL together.
type App struct {
	config *config.Config
	store  *store.SQLiteRepository
	engine *engine.Engine
	clock  clockwork.Clock
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	st, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	clock := clockwork.NewRealClock()
	tr := transport.NewHTTPTransport(c.ServerURL, c.RequestTimeout)
	eng := engine.New(st, tr, logger, clock, c.SyncInterval)

	return &App{
		config: c,
		store:  st,
		engine: eng,
		clock:  clock,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// shutdownGrace bounds the wait for an in-flight sync round on exit.
// Rounds themselves are bounded by the per-request timeout.
const shutdownGrace = 5 * time.Second

// Run starts the background sync loop and the interactive REPL. It blocks
// until the user exits, then stops the loop, waits for any in-flight sync
// round to finish or abort, and closes the store.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engineDone := make(chan struct{})
	go func() {
		a.engine.Run(ctx)
		close(engineDone)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)

	// The engine must stop before the store closes, so an in-flight
	// round never observes a closed database.
	cancel()
	select {
	case <-engineDone:
	case <-time.After(shutdownGrace):
	}

	_ = a.store.Close()
}

// getStatus renders the prompt status fragment, e.g. "(online, 14:02:51)".
func (a *App) getStatus() string {
	s := string(a.engine.State())
	if at := a.engine.LastSyncedAt(); !at.IsZero() {
		s = fmt.Sprintf("%s, %s", s, at.Local().Format("15:04:05"))
	}
	return "(" + s + ")"
}

// today is the default date for show and edit.
func (a *App) today() string {
	return a.clock.Now().Format(journal.DateLayout)
}

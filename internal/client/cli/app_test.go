package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mkravets/daybook/internal/client/engine"
	"github.com/mkravets/daybook/internal/client/transport"
	"github.com/mkravets/daybook/internal/common"
	"github.com/mkravets/daybook/internal/journal"
	"github.com/mkravets/daybook/internal/logging"
	"github.com/mkravets/daybook/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appOver builds an App over an in-memory store with the given transport
// and input stream. The store is left open: closing it is Run's job.
func appOver(t *testing.T, tr transport.Transport, input io.Reader) *App {
	t.Helper()

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))

	return &App{
		store:  st,
		engine: engine.New(st, tr, logger, clock, 10*time.Second),
		clock:  clock,
		reader: bufio.NewReader(input),
	}
}

// blockingTransport parks every call until its context is cancelled, as a
// hung server would.
type blockingTransport struct {
	entered   chan struct{}
	enterOnce sync.Once
	sawCancel atomic.Bool
}

func (b *blockingTransport) wait(ctx context.Context) error {
	b.enterOnce.Do(func() { close(b.entered) })
	<-ctx.Done()
	b.sawCancel.Store(true)
	return fmt.Errorf("dial: %w", common.ErrUnreachable)
}

func (b *blockingTransport) FetchCatalog(ctx context.Context) (journal.Catalog, error) {
	return nil, b.wait(ctx)
}

func (b *blockingTransport) FetchEntry(ctx context.Context, date string) (*journal.Entry, error) {
	return nil, b.wait(ctx)
}

func (b *blockingTransport) PushEntry(ctx context.Context, e *journal.Entry) (time.Time, error) {
	return time.Time{}, b.wait(ctx)
}

func TestAppRun_StopsEngineBeforeClosingStore(t *testing.T) {
	captureOutput(t)

	tr := &blockingTransport{entered: make(chan struct{})}
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	app := appOver(t, tr, pr)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	_, err := io.WriteString(pw, "sync\n")
	require.NoError(t, err)

	// A round is now parked inside the transport.
	select {
	case <-tr.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("sync round never reached the transport")
	}

	_, err = io.WriteString(pw, "exit\n")
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after exit")
	}

	// The parked round was cancelled and allowed to abort before the
	// store closed; only now do store calls fail.
	assert.True(t, tr.sawCancel.Load())

	_, err = app.store.Lookup(context.Background(), "2024-03-20")
	require.ErrorIs(t, err, common.ErrStorage)
}

func TestAppRun_MultilineInputSharesReader(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"edit 2024-03-20",
		"quiet day",
		"wrote some letters",
		"",
		"show 2024-03-20",
		"exit",
		"",
	}, "\n"))

	app := appOver(t, transport.NewHTTPTransport("http://127.0.0.1:1", time.Second), input)
	app.Run(context.Background())

	// The entry body typed right after the edit command must reach the
	// entry, and the commands after it must still be dispatched.
	assert.Contains(t, joined(out), "Saved 2024-03-20")
	assert.Contains(t, joined(out), "quiet day\nwrote some letters")
	assert.Contains(t, joined(out), "Bye!")
}

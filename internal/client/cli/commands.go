package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mkravets/daybook/internal/common"
)

// List prints every visible entry, newest first, with a one-line preview.
func (a *App) List(ctx context.Context) error {
	entries, err := a.engine.List(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	if len(entries) == 0 {
		printlnFn("No entries yet. Type 'edit' to write one.")
		return nil
	}

	for _, e := range entries {
		printlnFn(fmt.Sprintf("%s  %s", e.Date, preview(e.Content)))
	}
	return nil
}

// Show prints the full entry for a date; date defaults to today.
func (a *App) Show(ctx context.Context, date string) error {
	if date == "" {
		date = a.today()
	}

	entry, err := a.engine.Get(ctx, date)
	if errors.Is(err, common.ErrNotFound) {
		printlnFn("No entry for", date)
		return nil
	}
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("--- %s ---", entry.Date))
	printlnFn(entry.Content)
	return nil
}

// Edit replaces the entry for a date with freshly typed content; date
// defaults to today. The current content is shown first so the user knows
// what they are overwriting.
func (a *App) Edit(ctx context.Context, date string) error {
	if date == "" {
		date = a.today()
	}

	if cur, err := a.engine.Get(ctx, date); err == nil {
		printlnFn("Current entry:")
		printlnFn(cur.Content)
	}

	content, err := GetMultiline(a.reader, fmt.Sprintf("Entry for %s:", date), os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if err := a.engine.Save(ctx, date, content); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	printlnFn("Saved", date)
	a.engine.RequestSync()
	return nil
}

// Delete removes the entry for a date.
func (a *App) Delete(ctx context.Context, date string) error {
	err := a.engine.Delete(ctx, date)
	if errors.Is(err, common.ErrNotFound) {
		printlnFn("No entry for", date)
		return nil
	}
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	printlnFn("Deleted", date)
	a.engine.RequestSync()
	return nil
}

// Sync requests an out-of-schedule sync round.
func (a *App) Sync(ctx context.Context) error {
	a.engine.RequestSync()
	printlnFn("Sync requested")
	return nil
}

// Status reports connectivity state and the last successful sync.
func (a *App) Status(ctx context.Context) error {
	printlnFn("State:", string(a.engine.State()))
	if at := a.engine.LastSyncedAt(); !at.IsZero() {
		printlnFn("Last synced:", at.Local().Format("2006-01-02 15:04:05"))
	} else {
		printlnFn("Last synced: never")
	}
	return nil
}

// preview returns the first line of content, shortened for list output.
func preview(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	const max = 60
	if len(line) > max {
		return line[:max] + "..."
	}
	return line
}


package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Show(ctx context.Context, date string) error
	Edit(ctx context.Context, date string) error
	Delete(ctx context.Context, date string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the journal CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
// The same reader must back the multiline input helpers, so buffered-ahead
// input is never lost between the loop and a command prompt.
//
// Prompt & Commands
//
// The prompt shows the current sync status (from statusFn) and accepts:
//
//	help             — show available commands
//	list | l         — list all entries, newest first
//	show [date]      — print the entry for a date (default: today)
//	edit [date]      — write or replace the entry for a date (default: today)
//	delete <date>    — delete the entry for a date
//	sync             — request an immediate sync round
//	status           — show connectivity state and last sync time
//	exit | quit      — leave the program
//
// Dates are given as YYYY-MM-DD. Any errors returned by command handlers are
// ignored here; handlers report their own errors. This keeps the REPL loop
// resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("daybook %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		optDate := ""
		if len(args) > 0 {
			optDate = args[0]
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: (l)ist, show [date], edit [date], delete <date>, sync, status, exit")

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx, optDate)

		case "edit":
			_ = a.Edit(ctx, optDate)

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <date>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "sync":
			_ = a.Sync(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

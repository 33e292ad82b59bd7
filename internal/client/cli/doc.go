// Package cli provides the interactive journal command-line client.
//
// It wires configuration, the local entry store, the HTTP transport, and the
// background sync engine behind an interactive REPL. Entries are edited
// locally first; the engine replicates them to the server on its own
// schedule, so every command works with or without connectivity.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli

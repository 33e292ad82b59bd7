// Package common defines sentinel errors shared by the client and server
// layers of daybook. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks a local persistence failure. The previous durable
	// state is left intact whenever it is returned.
	ErrStorage = errors.New("storage error")

	// Transport-level errors. ErrUnreachable covers every network-level
	// failure (timeout, refused connection, malformed response) so the
	// sync engine can tell "server is down" from "server disagrees".
	ErrUnreachable = errors.New("server unreachable")

	// ErrRejected is returned when the server refuses a request at the
	// application level, e.g. a malformed date or body.
	ErrRejected = errors.New("rejected by server")
)

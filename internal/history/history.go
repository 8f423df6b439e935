// Package history provides per-user conversation history storage
// interfaces with an in-memory implementation. A SQLite-backed
// implementation lives in the sqlite subpackage.
package history

import (
	"time"

	"github.com/intakehq/intake/internal/provider"
)

// MaxFetch is the hard ceiling on turns returned by a single All call.
// It bounds memory use for pathological conversations; histories longer
// than this are truncated to their oldest MaxFetch turns.
const MaxFetch = 1000

// Store manages per-user conversation history as an append-only,
// insertion-ordered log keyed by an opaque user identifier.
// Implementations must be safe for concurrent use.
//
// Two concurrent writers for the same identifier may interleave; the
// store guarantees insertion order only, not mutual exclusion.
type Store interface {
	// Append adds a turn to the user's history.
	Append(uid string, msg provider.Message) error

	// Recent returns the n most recent turns for a user, oldest-first.
	// If fewer than n turns exist, all turns are returned.
	Recent(uid string, n int) ([]provider.Message, error)

	// All returns the user's turns oldest-first, capped at MaxFetch.
	All(uid string) ([]provider.Message, error)

	// Len returns the number of turns stored for a user.
	Len(uid string) (int, error)

	// Purge removes all history for a user.
	Purge(uid string) error

	// PurgeIdle removes all history for users whose most recent turn is
	// older than the cutoff. Returns the number of users purged.
	PurgeIdle(cutoff time.Time) (int, error)
}

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateURL is returned when a URL already maps to an active
	// bookmark.
	ErrDuplicateURL = errors.New("url already bookmarked")

	// ErrNoSuchID is returned when an explicitly named bookmark id does
	// not exist.
	ErrNoSuchID = errors.New("no bookmark with that id")

	// ErrEmptyLog is returned by Undo when no logical unit could be
	// undone at all. A partial undo reports its shortfall instead.
	ErrEmptyLog = errors.New("undo log is empty")

	// ErrStoreUnavailable tags failures of the underlying database
	// engine. The driver error stays in the chain.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// unavailable wraps an engine failure so callers can match
// ErrStoreUnavailable while the driver error remains inspectable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

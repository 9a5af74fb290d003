package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAvailable means the node does not have the requested data
	// yet. The condition is expected to clear on its own; callers
	// retry it.
	ErrNotAvailable = errors.New("requested data is not available yet")

	// ErrBlockSkipped means the cluster produced no block for the
	// slot. Unlike ErrNotAvailable this never clears.
	ErrBlockSkipped = errors.New("slot was skipped")
)

// ErrBadResponse means the node answered with something that could
// not be decoded or fails basic structural rules. The response can
// not be partially used; the run must fail rather than guess.
type ErrBadResponse struct {
	What   string
	Reason error
}

func (e ErrBadResponse) Error() string {
	return fmt.Sprintf("bad %s response: %v", e.What, e.Reason)
}

func (e ErrBadResponse) Unwrap() error {
	return e.Reason
}

package invite

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a handle does not resolve to a record.
	ErrNotFound = errors.New("invitation not found")

	// ErrUnauthorized means a non-author attempted to update an
	// invitation.
	ErrUnauthorized = errors.New("only the author can update an invitation")

	// ErrMalformed means a payload failed to deserialize or chain
	// metadata is inconsistent (an update pointer to a missing record,
	// or a cycle).
	ErrMalformed = errors.New("malformed invitation")

	// ErrInconsistent means a non-create, non-update record was found
	// mid-chain. Well-behaved writers never produce this.
	ErrInconsistent = errors.New("inconsistent update chain")

	// ErrNotInvited means an agent outside the invitee list attempted
	// to respond.
	ErrNotInvited = errors.New("agent is not an invitee")

	// ErrNotAccepted means an agent attempted to commit without a
	// prior acceptance.
	ErrNotAccepted = errors.New("commit requires a prior acceptance")

	// ErrStoreUnavailable means a substrate read or write failed. The
	// engine never retries; retry policy belongs to the substrate.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeErr tags a substrate I/O failure so callers can classify it
// with errors.Is while keeping the driver error in the chain.
func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

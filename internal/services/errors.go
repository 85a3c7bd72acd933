package services

import (
	"errors"

	"agenda/internal/core"
)

var (
	// ErrNotFound reports an unknown booking or ledger entry id.
	ErrNotFound = errors.New("record not found")

	// ErrStatusRevert rejects moving a completed obligation back to pending.
	ErrStatusRevert = errors.New("completed status cannot be reverted to pending")

	// ErrStoreUnavailable wraps every record store failure.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// IsValidation reports whether err was caused by invalid user input.
func IsValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidRecord,
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrInvalidStatus,
		core.ErrInvalidDirection,
		core.ErrEmptyDescription,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

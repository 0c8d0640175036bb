package quest

import (
	"fmt"
	"time"
)

// DenyReason tags the early-exit outcomes of the intake and withdrawal
// flows. Every denial is recoverable locally and mutates nothing.
type DenyReason int

const (
	DenyNotOwner DenyReason = iota
	DenyBanned
	DenyCooldown
	DenyFull
	DenyDuplicate
	DenyTimeout
	DenyBelowMinimum
	DenyNotANumber
	DenyExceedsBalance
	DenyInFlight
)

// DenyError carries a user-renderable denial out of a workflow step.
type DenyError struct {
	Reason    DenyReason
	Remaining time.Duration // DenyCooldown
	Status    string        // DenyDuplicate: current submission status
}

func (e *DenyError) Error() string {
	switch e.Reason {
	case DenyNotOwner:
		return "interaction user is not the board owner"
	case DenyBanned:
		return "user is banned from submitting"
	case DenyCooldown:
		return fmt.Sprintf("cooldown active for %s", e.Remaining)
	case DenyFull:
		return "quest is at capacity"
	case DenyDuplicate:
		return fmt.Sprintf("duplicate submission with status %q", e.Status)
	case DenyTimeout:
		return "timed out waiting for user input"
	case DenyBelowMinimum:
		return "amount below withdrawal minimum"
	case DenyNotANumber:
		return "amount is not a valid number"
	case DenyExceedsBalance:
		return "amount exceeds current balance"
	case DenyInFlight:
		return "another flow is already in progress for this user"
	default:
		return "denied"
	}
}

// Deny returns a bare denial for the given reason.
func Deny(reason DenyReason) *DenyError {
	return &DenyError{Reason: reason}
}

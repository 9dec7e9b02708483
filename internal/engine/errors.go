// Package engine implements the seat inventory and reservation core:
// temporary holds with expiry, atomic booking commit, tiered
// cancellation refunds, FIFO waitlist fulfillment and multiplicative
// dynamic pricing.  All engines receive their storage and collaborator
// dependencies at construction; none of them holds global state.
package engine

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the engines. Handlers compare against
// these with errors.Is and translate them into HTTP responses.
var (
	ErrShowNotFound      = errors.New("show not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrRefundNotFound    = errors.New("no refund transaction found for ticket")
	ErrWaitlistNotFound  = errors.New("waitlist entry not found")
	ErrAlreadyCancelled  = errors.New("ticket is already cancelled")
	ErrShowPassed        = errors.New("show has already passed")
	ErrHoldMismatch      = errors.New("seats are not held by you")
	ErrAlreadyWaitlisted = errors.New("already on the waitlist for this show")
	ErrInvalidState      = errors.New("invalid state")
	ErrNoSeats           = errors.New("no seats requested")
	ErrSeatMapExists     = errors.New("seat map already generated")
)

// ErrSeatUnavailable is the identity matched by errors.Is for
// SeatUnavailableError values.
var ErrSeatUnavailable = errors.New("requested seats are unavailable")

// SeatUnavailableError reports which requested seats could not be
// held or booked.  It matches ErrSeatUnavailable under errors.Is so
// callers can branch without unpacking the seat list.
type SeatUnavailableError struct {
	SeatNos []string
}

func (e *SeatUnavailableError) Error() string {
	if len(e.SeatNos) == 0 {
		return ErrSeatUnavailable.Error()
	}
	return "seats unavailable: " + strings.Join(e.SeatNos, ", ")
}

func (e *SeatUnavailableError) Is(target error) bool { return target == ErrSeatUnavailable }

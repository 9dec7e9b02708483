package model

import "time"

// Seat hold states.  TEMP holds are short-lived claims created
// during seat selection; CONFIRMED marks the hold that backed a
// successful booking.  Losing or released holds are deleted rather
// than transitioned.
const (
	HoldTemp      = "TEMP"
	HoldConfirmed = "CONFIRMED"
)

// SeatHold represents a temporary claim on a seat by a holder
// during checkout.  Holds prevent concurrent users from grabbing
// the same seat while one of them is completing a booking.  Expiry
// is a derived fact: a hold is live while now − CreatedAt is below
// the inventory TTL, and the sweep task eventually deletes stale
// rows.  Both paths share the same arithmetic.
//
// Fields:
//  ID        – primary key identifier.
//  ShowID    – show for which the seat is held.
//  SeatNo    – seat being held.
//  HolderID  – identity of the user holding the seat.
//  State     – TEMP or CONFIRMED.
//  CreatedAt – when the hold was created; anchors the TTL.
type SeatHold struct {
	ID        uint64    // seat_holds.id
	ShowID    uint64    // seat_holds.show_id
	SeatNo    string    // seat_holds.seat_no
	HolderID  string    // seat_holds.holder_id
	State     string    // seat_holds.state
	CreatedAt time.Time // seat_holds.created_at
}

package model

import "time"

// Seat availability statuses.  A seat is either free for sale or
// owned by exactly one confirmed ticket; the HELD presentation
// status is derived from the hold ledger at read time and is never
// stored on the seat itself.
const (
	SeatAvailable = "AVAILABLE" // seat can be held and booked
	SeatBooked    = "BOOKED"    // seat belongs to a confirmed ticket
)

// Seat type categories.  Prices and waitlist requests are keyed by
// seat type.
const (
	SeatTypeClassic = "CLASSIC"
	SeatTypePremium = "PREMIUM"
)

// ShowSeat links a physical seat to a particular show and tracks
// availability and pricing.  One show_seat record exists for every
// seat in the hall once the show's seat map has been generated;
// records are never deleted, only toggled between AVAILABLE and
// BOOKED.
//
// Fields:
//  ID        – primary key identifier.
//  ShowID    – the show to which this seat belongs.
//  SeatNo    – human-readable seat number (e.g. "C1", "P4").
//  SeatType  – CLASSIC or PREMIUM.
//  Price     – current price for this seat; rewritten by dynamic
//              repricing for future bookings.
//  Status    – AVAILABLE or BOOKED.
//  CreatedAt – timestamp when the record was created.
//  UpdatedAt – timestamp when the record was last updated.
type ShowSeat struct {
	ID        uint64    // show_seats.id
	ShowID    uint64    // show_seats.show_id
	SeatNo    string    // show_seats.seat_no
	SeatType  string    // show_seats.seat_type
	Price     int       // show_seats.price
	Status    string    // show_seats.status
	CreatedAt time.Time // show_seats.created_at
	UpdatedAt time.Time // show_seats.updated_at
}

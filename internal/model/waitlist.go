package model

import "time"

// Waitlist entry statuses.
const (
	WaitlistPending   = "PENDING"
	WaitlistNotified  = "NOTIFIED"
	WaitlistConverted = "CONVERTED"
	WaitlistExpired   = "EXPIRED"
	WaitlistCancelled = "CANCELLED"
)

// WaitlistEntry is a pending request for seats on a full show.
// Entries for a show form a FIFO queue ordered by CreatedAt; the
// queue position is recomputed on every read, never stored.  When
// freed seats can satisfy an entry it transitions to NOTIFIED;
// the matched seats are flagged as eligible but not reserved, so
// the holder must still place a normal hold and book.
//
// Fields:
//  ID           – primary key identifier.
//  ShowID       – show the holder is waiting for.
//  HolderID     – identity of the waiting user.
//  SeatType     – requested seat type (CLASSIC or PREMIUM).
//  Count        – number of seats requested.
//  Status       – PENDING, NOTIFIED, CONVERTED, EXPIRED or CANCELLED.
//  Message      – notification text set when the entry is notified.
//  CreatedAt    – registration time; defines the FIFO order.
//  NotifiedAt   – when the entry was matched, if ever.
//  ExpiresAt    – one hour before the show starts; the hourly sweep
//                 expires PENDING entries past this point.
type WaitlistEntry struct {
	ID         uint64     // waitlist_entries.id
	ShowID     uint64     // waitlist_entries.show_id
	HolderID   string     // waitlist_entries.holder_id
	SeatType   string     // waitlist_entries.seat_type
	Count      int        // waitlist_entries.seat_count
	Status     string     // waitlist_entries.status
	Message    string     // waitlist_entries.message
	CreatedAt  time.Time  // waitlist_entries.created_at
	NotifiedAt *time.Time // waitlist_entries.notified_at (nullable)
	ExpiresAt  time.Time  // waitlist_entries.expires_at
}

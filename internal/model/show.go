package model

import "time"

// Show represents a scheduled screening for which seats can be
// reserved.  The engine treats catalog data (title, hall) as opaque;
// what matters here is the start time, which drives the refund
// tiers, the waitlist expiry and the pricing time slot.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – movie title or an external reference.
//  StartsAt  – when the show begins.
//  EndsAt    – when the show ends (must be after StartsAt).
//  Status    – current state of the show (SCHEDULED, CANCELLED,
//              FINISHED).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Show struct {
	ID        uint64    // shows.id
	Title     string    // shows.title
	StartsAt  time.Time // shows.starts_at
	EndsAt    time.Time // shows.ends_at
	Status    string    // shows.status
	CreatedAt time.Time // shows.created_at
	UpdatedAt time.Time // shows.updated_at
}

// Package queue moves waitlist notifications over RabbitMQ.  The
// engine hands the publisher a payload when an entry is matched;
// the consumer is a stand-in for the real email/SMS dispatcher and
// appends each notification to a log file.
package queue

// SeatsAvailableEvent is published on the waitlist.notified queue
// when freed seats can satisfy a waitlist entry.  It carries enough
// for a downstream notifier to reach the holder without touching
// the primary database.
type SeatsAvailableEvent struct {
	HolderID   string   `json:"holder_id"`
	ShowID     uint64   `json:"show_id"`
	Message    string   `json:"message"`
	SeatNos    []string `json:"seat_nos"`
	NotifiedAt string   `json:"notified_at"`
}

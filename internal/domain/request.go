package domain

import "time"

// Itinerary is the tuple that identifies a ledger entry. Two requests with the
// same tuple are the same intent: the upsert key on creation and the match key
// for booking both use every field (travel class compared case-insensitively
// on match).
type Itinerary struct {
	Origin         string
	Destination    string
	DepartureDate  time.Time
	ReturnDate     *time.Time
	PassengerCount int
	TravelClass    string
	PriceCents     int64
}

// FlightRequest is one ledger entry: a user's searched itinerary waiting for,
// or holding, administrator approval. Price is fixed at creation time and
// never recomputed. There is no persisted "booked" state; a booking consumes
// an approved entry behaviorally and the row stays approved.
type FlightRequest struct {
	ID         int64
	IdentityID int64
	Itinerary
	Approved  bool
	ClaimedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerRow is a ledger entry joined with the requester's name for reports.
type LedgerRow struct {
	FlightRequest
	FirstName string
	LastName  string
}

// Outcome names the terminal result of a booking attempt.
type Outcome string

const (
	// OutcomeBooked: an approved entry matched and the provider order went through.
	OutcomeBooked Outcome = "BOOKED"
	// OutcomeDeferred: an approved entry matched but the provider sequence failed;
	// the user is still told the booking succeeded and a follow-up email is promised.
	OutcomeDeferred Outcome = "DEFERRED"
	// OutcomePending: no approved entry matched; the request stays in the ledger.
	OutcomePending Outcome = "PENDING"
)

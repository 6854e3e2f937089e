package amadeus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPayload is returned when a client-submitted offer payload cannot
// be decoded in either the strict or the lenient form.
var ErrInvalidPayload = errors.New("invalid flight data format")

// OfferFacts are the fields the ledger extracts from a chosen offer.
type OfferFacts struct {
	Origin         string
	Destination    string
	DepartureDate  time.Time
	ReturnDate     *time.Time
	PassengerCount int
	TravelClass    string
	PriceTotal     string
}

// DecodeOffer parses a client-submitted offer payload. Strict JSON is tried
// first; payloads that arrive as a Python-style repr (single quotes,
// True/False/None) are normalized and retried before giving up.
func DecodeOffer(raw []byte) (*FlightOffer, json.RawMessage, error) {
	var offer FlightOffer
	if err := json.Unmarshal(raw, &offer); err == nil && len(offer.Itineraries) > 0 {
		return &offer, json.RawMessage(raw), nil
	}

	normalized := lenientNormalize(raw)
	if err := json.Unmarshal(normalized, &offer); err != nil || len(offer.Itineraries) == 0 {
		return nil, nil, ErrInvalidPayload
	}
	return &offer, json.RawMessage(normalized), nil
}

// ExtractFacts pulls the itinerary tuple out of a decoded offer: origin from
// the first segment, destination from the last segment of the outbound
// itinerary, return date only when a second itinerary exists.
func ExtractFacts(offer *FlightOffer) (*OfferFacts, error) {
	if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
		return nil, ErrInvalidPayload
	}
	if len(offer.TravelerPricings) == 0 || len(offer.TravelerPricings[0].FareDetailsBySegment) == 0 {
		return nil, ErrInvalidPayload
	}

	outbound := offer.Itineraries[0]
	first := outbound.Segments[0]
	last := outbound.Segments[len(outbound.Segments)-1]

	departure, err := segmentDate(first.Departure.At)
	if err != nil {
		return nil, fmt.Errorf("departure date: %w", ErrInvalidPayload)
	}

	facts := &OfferFacts{
		Origin:         first.Departure.IataCode,
		Destination:    last.Arrival.IataCode,
		DepartureDate:  departure,
		PassengerCount: len(offer.TravelerPricings),
		TravelClass:    offer.TravelerPricings[0].FareDetailsBySegment[0].Cabin,
		PriceTotal:     offer.Price.Total,
	}

	if len(offer.Itineraries) > 1 {
		inbound := offer.Itineraries[len(offer.Itineraries)-1]
		if len(inbound.Segments) == 0 {
			return nil, ErrInvalidPayload
		}
		lastIn := inbound.Segments[len(inbound.Segments)-1]
		ret, err := segmentDate(lastIn.Arrival.At)
		if err != nil {
			return nil, fmt.Errorf("return date: %w", ErrInvalidPayload)
		}
		facts.ReturnDate = &ret
	}

	if facts.Origin == "" || facts.Destination == "" || facts.PriceTotal == "" {
		return nil, ErrInvalidPayload
	}
	return facts, nil
}

// segmentDate keeps only the date part of a "2006-01-02T15:04:05" timestamp.
func segmentDate(at string) (time.Time, error) {
	datePart, _, _ := strings.Cut(at, "T")
	return time.Parse("2006-01-02", datePart)
}

func lenientNormalize(raw []byte) []byte {
	s := string(raw)
	replacer := strings.NewReplacer(
		"'", `"`,
		"True", "true",
		"False", "false",
		"None", "null",
	)
	return []byte(replacer.Replace(s))
}

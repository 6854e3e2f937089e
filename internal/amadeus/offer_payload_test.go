package amadeus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const roundTripOffer = `{
	"itineraries": [
		{"segments": [
			{"departure": {"iataCode": "LOS", "at": "2024-06-01T08:00:00"}, "arrival": {"iataCode": "CDG", "at": "2024-06-01T11:00:00"}, "carrierCode": "AF", "number": "811"},
			{"departure": {"iataCode": "CDG", "at": "2024-06-01T13:00:00"}, "arrival": {"iataCode": "LHR", "at": "2024-06-01T14:30:00"}, "carrierCode": "AF", "number": "1680"}
		]},
		{"segments": [
			{"departure": {"iataCode": "LHR", "at": "2024-06-15T09:00:00"}, "arrival": {"iataCode": "LOS", "at": "2024-06-15T16:00:00"}, "carrierCode": "BA", "number": "75"}
		]}
	],
	"price": {"currency": "NGN", "total": "2500.00"},
	"travelerPricings": [
		{"fareDetailsBySegment": [{"cabin": "ECONOMY"}, {"cabin": "ECONOMY"}]},
		{"fareDetailsBySegment": [{"cabin": "ECONOMY"}, {"cabin": "ECONOMY"}]}
	]
}`

func TestDecodeOffer_StrictJSON(t *testing.T) {
	offer, raw, err := DecodeOffer([]byte(roundTripOffer))

	assert.NoError(t, err)
	assert.NotNil(t, raw)
	assert.Len(t, offer.Itineraries, 2)
	assert.Equal(t, "2500.00", offer.Price.Total)
}

func TestDecodeOffer_PythonRepr(t *testing.T) {
	payload := `{'itineraries': [{'segments': [{'departure': {'iataCode': 'LOS', 'at': '2024-06-01T08:00:00'}, 'arrival': {'iataCode': 'LHR', 'at': '2024-06-01T14:30:00'}, 'carrierCode': 'BA', 'number': '75'}]}], 'price': {'currency': 'NGN', 'total': '2500.00'}, 'travelerPricings': [{'fareDetailsBySegment': [{'cabin': 'ECONOMY'}]}], 'oneWay': False, 'nonHomogeneous': None}`

	offer, raw, err := DecodeOffer([]byte(payload))

	assert.NoError(t, err)
	assert.Len(t, offer.Itineraries, 1)
	// the normalized form is what gets posted back to the provider
	assert.Contains(t, string(raw), `"iataCode"`)
	assert.NotContains(t, string(raw), "'")
}

func TestDecodeOffer_Garbage(t *testing.T) {
	_, _, err := DecodeOffer([]byte("definitely not an offer"))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestExtractFacts_RoundTrip(t *testing.T) {
	offer, _, err := DecodeOffer([]byte(roundTripOffer))
	assert.NoError(t, err)

	facts, err := ExtractFacts(offer)

	assert.NoError(t, err)
	assert.Equal(t, "LOS", facts.Origin)
	// destination is the last stop of the outbound leg, not the final arrival
	assert.Equal(t, "LHR", facts.Destination)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), facts.DepartureDate)
	if assert.NotNil(t, facts.ReturnDate) {
		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), *facts.ReturnDate)
	}
	assert.Equal(t, 2, facts.PassengerCount)
	assert.Equal(t, "ECONOMY", facts.TravelClass)
	assert.Equal(t, "2500.00", facts.PriceTotal)
}

func TestExtractFacts_OneWayHasNoReturnDate(t *testing.T) {
	offer := &FlightOffer{
		Itineraries: []Itinerary{
			{Segments: []Segment{{
				Departure: Endpoint{IataCode: "LOS", At: "2024-06-01T08:00:00"},
				Arrival:   Endpoint{IataCode: "LHR", At: "2024-06-01T14:30:00"},
			}}},
		},
		Price:            Price{Total: "2500.00"},
		TravelerPricings: []TravelerPricing{{FareDetailsBySegment: []FareDetail{{Cabin: "BUSINESS"}}}},
	}

	facts, err := ExtractFacts(offer)

	assert.NoError(t, err)
	assert.Nil(t, facts.ReturnDate)
	assert.Equal(t, "BUSINESS", facts.TravelClass)
}

func TestExtractFacts_EmptyInboundSegments(t *testing.T) {
	payload := `{
		"itineraries": [
			{"segments": [{"departure": {"iataCode": "LOS", "at": "2024-06-01T08:00:00"}, "arrival": {"iataCode": "LHR", "at": "2024-06-01T14:30:00"}}]},
			{"segments": []}
		],
		"price": {"currency": "NGN", "total": "2500.00"},
		"travelerPricings": [{"fareDetailsBySegment": [{"cabin": "ECONOMY"}]}]
	}`

	offer, _, err := DecodeOffer([]byte(payload))
	assert.NoError(t, err)

	_, err = ExtractFacts(offer)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestExtractFacts_MissingPricings(t *testing.T) {
	offer := &FlightOffer{
		Itineraries: []Itinerary{
			{Segments: []Segment{{
				Departure: Endpoint{IataCode: "LOS", At: "2024-06-01T08:00:00"},
				Arrival:   Endpoint{IataCode: "LHR", At: "2024-06-01T14:30:00"},
			}}},
		},
		Price: Price{Total: "2500.00"},
	}

	_, err := ExtractFacts(offer)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

package domain

import "encoding/json"

// OfferLeg is one displayed segment of a search result.
type OfferLeg struct {
	Carrier       string `json:"carrier"`
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
}

// Offer is a display-ready search result. Raw keeps the provider's original
// payload so the exact offer can be posted back for request creation and
// pricing confirmation.
type Offer struct {
	Legs       []OfferLeg      `json:"legs"`
	Cabin      string          `json:"cabin"`
	PriceTotal string          `json:"price_total"`
	Currency   string          `json:"currency"`
	Passengers int             `json:"passengers"`
	Raw        json.RawMessage `json:"raw"`
}

// OrderRecord is the provider's confirmation of a submitted flight order.
type OrderRecord struct {
	ID         string   `json:"id"`
	References []string `json:"references"`
}

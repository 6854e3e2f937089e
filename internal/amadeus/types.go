package amadeus

// FlightOffer mirrors the slice of the provider's flight-offer payload that
// the booking workflow reads. Unknown fields are carried untouched in the raw
// payload, not here.
type FlightOffer struct {
	Type             string            `json:"type"`
	ID               string            `json:"id"`
	Itineraries      []Itinerary       `json:"itineraries"`
	Price            Price             `json:"price"`
	TravelerPricings []TravelerPricing `json:"travelerPricings"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure   Endpoint `json:"departure"`
	Arrival     Endpoint `json:"arrival"`
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
}

type Endpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal"`
	At       string `json:"at"`
}

type Price struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

type TravelerPricing struct {
	TravelerID           string       `json:"travelerId"`
	FareDetailsBySegment []FareDetail `json:"fareDetailsBySegment"`
}

type FareDetail struct {
	Cabin string `json:"cabin"`
}

type Location struct {
	IataCode string `json:"iataCode"`
	Name     string `json:"name"`
}

// Traveler is the passenger record submitted with a flight order.
type Traveler struct {
	ID          string             `json:"id"`
	DateOfBirth string             `json:"dateOfBirth"`
	Name        TravelerName       `json:"name"`
	Gender      string             `json:"gender"`
	Contact     TravelerContact    `json:"contact"`
	Documents   []TravelerDocument `json:"documents"`
}

type TravelerName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type TravelerContact struct {
	EmailAddress string          `json:"emailAddress"`
	Phones       []TravelerPhone `json:"phones"`
}

type TravelerPhone struct {
	DeviceType         string `json:"deviceType"`
	CountryCallingCode string `json:"countryCallingCode"`
	Number             string `json:"number"`
}

type TravelerDocument struct {
	DocumentType     string `json:"documentType"`
	BirthPlace       string `json:"birthPlace"`
	IssuanceLocation string `json:"issuanceLocation"`
	IssuanceDate     string `json:"issuanceDate"`
	Number           string `json:"number"`
	ExpiryDate       string `json:"expiryDate"`
	IssuanceCountry  string `json:"issuanceCountry"`
	ValidityCountry  string `json:"validityCountry"`
	Nationality      string `json:"nationality"`
	Holder           bool   `json:"holder"`
}

// DefaultTraveler returns the placeholder passenger the order endpoint is
// exercised with until traveler capture is built.
func DefaultTraveler() Traveler {
	return Traveler{
		ID:          "1",
		DateOfBirth: "1982-01-16",
		Name:        TravelerName{FirstName: "JORGE", LastName: "GONZALES"},
		Gender:      "MALE",
		Contact: TravelerContact{
			EmailAddress: "jorge.gonzales833@telefonica.es",
			Phones: []TravelerPhone{
				{DeviceType: "MOBILE", CountryCallingCode: "34", Number: "480080076"},
			},
		},
		Documents: []TravelerDocument{
			{
				DocumentType:     "PASSPORT",
				BirthPlace:       "Madrid",
				IssuanceLocation: "Madrid",
				IssuanceDate:     "2015-04-14",
				Number:           "00000000",
				ExpiryDate:       "2025-04-14",
				IssuanceCountry:  "ES",
				ValidityCountry:  "ES",
				Nationality:      "ES",
				Holder:           true,
			},
		},
	}
}

package domain

// HotelStay is a display-ready hotel search result: one bookable room offer
// at one hotel for the requested stay.
type HotelStay struct {
	HotelID      string `json:"hotel_id"`
	HotelName    string `json:"hotel_name"`
	CityCode     string `json:"city_code,omitempty"`
	OfferID      string `json:"offer_id"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	RoomType     string `json:"room_type"`
	Description  string `json:"description,omitempty"`
	Adults       int    `json:"adults"`
	PriceTotal   string `json:"price_total"`
	Currency     string `json:"currency"`
}

// HotelBooking is the confirmation of a placed hotel booking.
type HotelBooking struct {
	ID             string `json:"id"`
	ConfirmationID string `json:"provider_confirmation_id"`
}

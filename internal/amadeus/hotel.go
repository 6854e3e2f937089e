package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// HotelListing is one hotel in a hotel-offers response, carrying the rooms
// the provider currently offers for the stay.
type HotelListing struct {
	Hotel     HotelInfo   `json:"hotel"`
	Available bool        `json:"available"`
	Offers    []RoomOffer `json:"offers"`
}

type HotelInfo struct {
	HotelID  string `json:"hotelId"`
	Name     string `json:"name"`
	CityCode string `json:"cityCode"`
}

type RoomOffer struct {
	ID           string     `json:"id"`
	CheckInDate  string     `json:"checkInDate"`
	CheckOutDate string     `json:"checkOutDate"`
	Room         RoomDetail `json:"room"`
	Guests       RoomGuests `json:"guests"`
	Price        HotelPrice `json:"price"`
}

type RoomDetail struct {
	Type        string          `json:"type"`
	Description RoomDescription `json:"description"`
}

type RoomDescription struct {
	Text string `json:"text"`
}

type RoomGuests struct {
	Adults int `json:"adults"`
}

type HotelPrice struct {
	Currency string `json:"currency"`
	Base     string `json:"base"`
	Total    string `json:"total"`
}

// HotelSearchParams are the inputs to a hotel-offers search.
type HotelSearchParams struct {
	HotelIDs     []string
	CheckInDate  string
	CheckOutDate string
	Adults       int
}

// HotelGuest is the guest record submitted with a hotel booking.
type HotelGuest struct {
	ID      int          `json:"id"`
	Name    GuestName    `json:"name"`
	Contact GuestContact `json:"contact"`
}

type GuestName struct {
	Title     string `json:"title"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type GuestContact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// HotelPayment is the payment record submitted with a hotel booking.
type HotelPayment struct {
	ID     int         `json:"id"`
	Method string      `json:"method"`
	Card   PaymentCard `json:"card"`
}

type PaymentCard struct {
	VendorCode string `json:"vendorCode"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
}

// HotelBookingRecord is the provider's confirmation of a placed hotel booking.
type HotelBookingRecord struct {
	ID                     string `json:"id"`
	ProviderConfirmationID string `json:"providerConfirmationId"`
}

// DefaultHotelGuests returns the placeholder guest the booking endpoint is
// exercised with until guest capture is built.
func DefaultHotelGuests() []HotelGuest {
	return []HotelGuest{{
		ID:      1,
		Name:    GuestName{Title: "MR", FirstName: "BOB", LastName: "SMITH"},
		Contact: GuestContact{Phone: "+33679278416", Email: "bob.smith@email.com"},
	}}
}

// DefaultHotelPayments returns the sandbox card accepted by the provider's
// test environment.
func DefaultHotelPayments() []HotelPayment {
	return []HotelPayment{{
		ID:     1,
		Method: "creditCard",
		Card:   PaymentCard{VendorCode: "VI", CardNumber: "4151289722471370", ExpiryDate: "2027-08"},
	}}
}

// HotelsByCity lists the provider's hotel ids for a city.
func (c *Client) HotelsByCity(ctx context.Context, cityCode string) ([]string, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("cityCode", cityCode)

	body, err := c.get(ctx, token, "/v1/reference-data/locations/hotels/by-city?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []struct {
			HotelID string `json:"hotelId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode hotel list response: %w", err)
	}

	ids := make([]string, 0, len(envelope.Data))
	for _, entry := range envelope.Data {
		ids = append(ids, entry.HotelID)
	}
	return ids, nil
}

// HotelOffers searches room offers for a set of hotel ids and a stay.
func (c *Client) HotelOffers(ctx context.Context, params HotelSearchParams) ([]HotelListing, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("hotelIds", strings.Join(params.HotelIDs, ","))
	q.Set("checkInDate", params.CheckInDate)
	q.Set("checkOutDate", params.CheckOutDate)
	q.Set("adults", strconv.Itoa(params.Adults))

	body, err := c.get(ctx, token, "/v3/shopping/hotel-offers?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []HotelListing `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode hotel offers response: %w", err)
	}
	return envelope.Data, nil
}

// HotelOfferAvailability re-checks a single room offer before booking.
func (c *Client) HotelOfferAvailability(ctx context.Context, offerID string) (*HotelListing, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, token, "/v3/shopping/hotel-offers/"+url.PathEscape(offerID))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data HotelListing `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode hotel availability response: %w", err)
	}
	return &envelope.Data, nil
}

// BookHotelOffer places the hotel booking and returns the provider's
// confirmation record.
func (c *Client) BookHotelOffer(ctx context.Context, offerID string, guests []HotelGuest, payments []HotelPayment) (*HotelBookingRecord, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"offerId":  offerID,
			"guests":   guests,
			"payments": payments,
		},
	}

	body, err := c.post(ctx, token, "/v1/booking/hotel-bookings", payload)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []HotelBookingRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode hotel booking response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, errors.New("hotel booking returned no confirmation")
	}
	return &envelope.Data[0], nil
}

// TripPurpose predicts whether a round trip is business or leisure travel.
func (c *Client) TripPurpose(ctx context.Context, origin, destination, departureDate, returnDate string) (string, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", destination)
	q.Set("departureDate", departureDate)
	q.Set("returnDate", returnDate)

	body, err := c.get(ctx, token, "/v1/travel/predictions/trip-purpose?"+q.Encode())
	if err != nil {
		return "", err
	}

	var envelope struct {
		Data struct {
			Result string `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode trip purpose response: %w", err)
	}
	return envelope.Data.Result, nil
}

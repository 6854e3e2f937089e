package amadeus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tokenHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "id", r.Form.Get("client_id"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "token-1"})
	}
}

func TestClient_GetAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/security/oauth2/token", r.URL.Path)
		tokenHandler(t)(w, r)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "id", "secret")
	token, err := client.GetAccessToken(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestClient_GetAccessToken_providerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"title": "Unauthorized", "detail": "invalid client credentials"}},
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "id", "bad")
	_, err := client.GetAccessToken(context.Background())

	assert.ErrorContains(t, err, "invalid client credentials")
}

func TestClient_SearchOffers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/security/oauth2/token" {
			tokenHandler(t)(w, r)
			return
		}

		assert.Equal(t, "/v2/shopping/flight-offers", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "LOS", r.URL.Query().Get("originLocationCode"))
		assert.Equal(t, "LHR", r.URL.Query().Get("destinationLocationCode"))
		assert.Equal(t, "1", r.URL.Query().Get("adults"))
		assert.Empty(t, r.URL.Query().Get("returnDate"))

		w.Write([]byte(`{"data": [{"id": "1", "price": {"currency": "NGN", "total": "2500.00"}, "itineraries": []}]}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "id", "secret")
	offers, raw, err := client.SearchOffers(context.Background(), SearchParams{
		Origin:        "LOS",
		Destination:   "LHR",
		DepartureDate: "2024-06-01",
		Adults:        1,
	})

	assert.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Len(t, raw, 1)
	assert.Equal(t, "2500.00", offers[0].Price.Total)
}

func TestClient_Locations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/security/oauth2/token" {
			tokenHandler(t)(w, r)
			return
		}

		assert.Equal(t, "/v1/reference-data/locations", r.URL.Path)
		assert.Equal(t, "lag", r.URL.Query().Get("keyword"))
		assert.Equal(t, "AIRPORT,CITY", r.URL.Query().Get("subType"))

		w.Write([]byte(`{"data": [{"iataCode": "LOS", "name": "MURTALA MUHAMMED INTL"}]}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "id", "secret")
	locations, err := client.Locations(context.Background(), "lag")

	assert.NoError(t, err)
	assert.Len(t, locations, 1)
	assert.Equal(t, "LOS", locations[0].IataCode)
}

func TestClient_ConfirmPricing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/shopping/flight-offers/pricing", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var body struct {
			Data struct {
				Type         string            `json:"type"`
				FlightOffers []json.RawMessage `json:"flightOffers"`
			} `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "flight-offers-pricing", body.Data.Type)
		assert.Len(t, body.Data.FlightOffers, 1)

		w.Write([]byte(`{"data": {"flightOffers": [{"id": "1", "priced": true}]}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "id", "secret")
	confirmed, err := client.ConfirmPricing(context.Background(), "token-1", json.RawMessage(`{"id": "1"}`))

	assert.NoError(t, err)
	assert.Contains(t, string(confirmed), `"priced"`)
}

func TestClient_SubmitOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/booking/flight-orders", r.URL.Path)

		var body struct {
			Data struct {
				Type      string     `json:"type"`
				Travelers []Traveler `json:"travelers"`
			} `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "flight-order", body.Data.Type)
		assert.Len(t, body.Data.Travelers, 1)

		w.Write([]byte(`{"data": {"id": "order-1", "associatedRecords": [{"reference": "ABC123"}, {"reference": "XYZ789"}]}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "id", "secret")
	order, err := client.SubmitOrder(context.Background(), "token-1", json.RawMessage(`[{"id": "1"}]`), []Traveler{DefaultTraveler()})

	assert.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, []string{"ABC123", "XYZ789"}, order.References)
}

package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRequestEvent(t *testing.T) {
	payload := []byte(`{
		"type": "request_booked",
		"request_id": 42,
		"identity_id": 9,
		"origin": "LOS",
		"destination": "LHR",
		"departure_date": "2024-06-01T00:00:00Z",
		"passenger_count": 1,
		"travel_class": "ECONOMY",
		"price_cents": 500000,
		"outcome": "BOOKED",
		"order_id": "order-1"
	}`)

	event, err := decodeRequestEvent(payload)

	assert.NoError(t, err)
	assert.Equal(t, "request_booked", event.Type)
	assert.Equal(t, int64(42), event.RequestID)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), event.DepartureDate)
	assert.Equal(t, "BOOKED", event.Outcome)
	assert.Equal(t, "order-1", event.OrderID)
}

func TestDecodeRequestEvent_Malformed(t *testing.T) {
	_, err := decodeRequestEvent([]byte("not json"))
	assert.Error(t, err)
}

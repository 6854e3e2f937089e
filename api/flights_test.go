package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/thrivenig/travelbook/internal/amadeus"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/service/booking"
	"github.com/thrivenig/travelbook/internal/service/identity"
	"github.com/thrivenig/travelbook/internal/service/search"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateRequest(ctx context.Context, identityID int64, payload []byte) (*domain.FlightRequest, json.RawMessage, error) {
	args := m.Called(ctx, identityID, payload)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.FlightRequest), args.Get(1).(json.RawMessage), args.Error(2)
}

func (m *MockBookingUseCase) ApproveRequests(ctx context.Context, callerID int64, ids []int64) ([]domain.FlightRequest, error) {
	args := m.Called(ctx, callerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightRequest), args.Error(1)
}

func (m *MockBookingUseCase) Book(ctx context.Context, callerID int64, payload []byte) (*booking.BookResult, error) {
	args := m.Called(ctx, callerID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookResult), args.Error(1)
}

func (m *MockBookingUseCase) PendingRequests(ctx context.Context, identityID int64) ([]domain.FlightRequest, error) {
	args := m.Called(ctx, identityID)
	return args.Get(0).([]domain.FlightRequest), args.Error(1)
}

func (m *MockBookingUseCase) ApprovedRequests(ctx context.Context, identityID int64) ([]domain.FlightRequest, error) {
	args := m.Called(ctx, identityID)
	return args.Get(0).([]domain.FlightRequest), args.Error(1)
}

func (m *MockBookingUseCase) PendingApprovals(ctx context.Context) ([]domain.FlightRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.FlightRequest), args.Error(1)
}

type MockSearchUseCase struct {
	mock.Mock
}

func (m *MockSearchUseCase) Search(ctx context.Context, params amadeus.SearchParams) ([]domain.Offer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Offer), args.Error(1)
}

func (m *MockSearchUseCase) LocationLookahead(ctx context.Context, term string) ([]string, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSearchUseCase) TripPurpose(ctx context.Context, params amadeus.SearchParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func withSession(c *gin.Context, identityID int64, kind domain.RoleKind) {
	c.Set(sessionKey, &identity.Session{IdentityID: identityID, Kind: kind})
}

func TestFlightHandler_searchOffers(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil)

	body, _ := json.Marshal(searchRequest{
		Origin:        "LOS",
		Destination:   "LHR",
		DepartureDate: "2024-06-01",
		Adults:        1,
	})
	c, w := testContext(t, "POST", "/flights/search", body)

	mockSearch.On("Search", mock.Anything, amadeus.SearchParams{
		Origin: "LOS", Destination: "LHR", DepartureDate: "2024-06-01", Adults: 1,
	}).Return([]domain.Offer{{PriceTotal: "2500.00", Currency: "NGN"}}, nil)

	handler.searchOffers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSearch.AssertExpectations(t)
}

func TestFlightHandler_searchOffers_noItinerary(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil)

	body, _ := json.Marshal(searchRequest{Origin: "LOS", Destination: "XXX", DepartureDate: "2024-06-01", Adults: 1})
	c, w := testContext(t, "POST", "/flights/search", body)

	mockSearch.On("Search", mock.Anything, mock.Anything).Return(nil, search.ErrNoItinerary)

	handler.searchOffers(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no flight itinerary")
}

func TestFlightHandler_searchOffers_roundTripCarriesTripPurpose(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil)

	body, _ := json.Marshal(searchRequest{
		Origin:        "LOS",
		Destination:   "LHR",
		DepartureDate: "2024-06-01",
		ReturnDate:    "2024-06-10",
		Adults:        1,
	})
	c, w := testContext(t, "POST", "/flights/search", body)

	params := amadeus.SearchParams{
		Origin: "LOS", Destination: "LHR", DepartureDate: "2024-06-01", ReturnDate: "2024-06-10", Adults: 1,
	}
	mockSearch.On("TripPurpose", mock.Anything, params).Return("BUSINESS", nil)
	mockSearch.On("Search", mock.Anything, params).Return([]domain.Offer{{PriceTotal: "2500.00"}}, nil)

	handler.searchOffers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "BUSINESS", response["trip_purpose"])
}

func TestFlightHandler_searchOffers_tripPurposeFailureAborts(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil)

	body, _ := json.Marshal(searchRequest{
		Origin:        "LOS",
		Destination:   "LHR",
		DepartureDate: "2024-06-01",
		ReturnDate:    "2024-06-10",
		Adults:        1,
	})
	c, w := testContext(t, "POST", "/flights/search", body)

	mockSearch.On("TripPurpose", mock.Anything, mock.Anything).Return("", assert.AnError)

	handler.searchOffers(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockSearch.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFlightHandler_airports(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil)

	c, w := testContext(t, "GET", "/flights/airports?term=lag", nil)

	mockSearch.On("LocationLookahead", mock.Anything, "lag").Return([]string{"LOS, MURTALA MUHAMMED INTL"}, nil)

	handler.airports(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "LOS, MURTALA MUHAMMED INTL")
}

func TestFlightHandler_book_outcomes(t *testing.T) {
	payload := []byte(`{"price": {"total": "2500.00"}}`)

	tests := []struct {
		name        string
		result      *booking.BookResult
		wantMessage string
	}{
		{
			name: "booked",
			result: &booking.BookResult{
				Outcome: domain.OutcomeBooked,
				Owner:   &domain.Identity{Username: "ada"},
				Order:   &domain.OrderRecord{ID: "order-1", References: []string{"ABC123"}},
			},
			wantMessage: "Flight Booked ada. Please check your mails.",
		},
		{
			name: "deferred reads the same as booked",
			result: &booking.BookResult{
				Outcome: domain.OutcomeDeferred,
				Owner:   &domain.Identity{Username: "ada"},
			},
			wantMessage: "Flight Booked ada. Please check your mails.",
		},
		{
			name:        "pending",
			result:      &booking.BookResult{Outcome: domain.OutcomePending},
			wantMessage: "Your flight hasn't been approved yet.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBooking := &MockBookingUseCase{}
			handler := NewFlightHandler(nil, mockBooking)

			c, w := testContext(t, "POST", "/flights/book", payload)
			withSession(c, 3, domain.RoleStaff)

			mockBooking.On("Book", mock.Anything, int64(3), payload).Return(tt.result, nil)

			handler.book(c)

			assert.Equal(t, http.StatusOK, w.Code)
			var response map[string]any
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantMessage, response["message"])
		})
	}
}

func TestFlightHandler_book_invalidPayload(t *testing.T) {
	mockBooking := &MockBookingUseCase{}
	handler := NewFlightHandler(nil, mockBooking)

	payload := []byte("garbage")
	c, w := testContext(t, "POST", "/flights/book", payload)
	withSession(c, 3, domain.RoleStaff)

	mockBooking.On("Book", mock.Anything, int64(3), payload).Return(nil, booking.ErrInvalidPayload)

	handler.book(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_listRequests(t *testing.T) {
	mockBooking := &MockBookingUseCase{}
	handler := NewFlightHandler(nil, mockBooking)

	c, w := testContext(t, "GET", "/flights/requests?approved=true", nil)
	withSession(c, 3, domain.RoleStaff)

	mockBooking.On("ApprovedRequests", mock.Anything, int64(3)).Return([]domain.FlightRequest{}, nil)

	handler.listRequests(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockBooking.AssertNotCalled(t, "PendingRequests", mock.Anything, mock.Anything)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/service/hotels"
)

type MockHotelUseCase struct {
	mock.Mock
}

func (m *MockHotelUseCase) Search(ctx context.Context, input hotels.SearchInput) ([]domain.HotelStay, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HotelStay), args.Error(1)
}

func (m *MockHotelUseCase) Rooms(ctx context.Context, hotelID, checkInDate, checkOutDate string) ([]domain.HotelStay, error) {
	args := m.Called(ctx, hotelID, checkInDate, checkOutDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HotelStay), args.Error(1)
}

func (m *MockHotelUseCase) Book(ctx context.Context, callerID int64, offerID string) (*domain.HotelBooking, error) {
	args := m.Called(ctx, callerID, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HotelBooking), args.Error(1)
}

func TestHotelHandler_search(t *testing.T) {
	mockHotels := &MockHotelUseCase{}
	handler := NewHotelHandler(mockHotels)

	body, _ := json.Marshal(hotelSearchRequest{
		CityCode:     "PAR",
		CheckInDate:  "2024-06-01",
		CheckOutDate: "2024-06-05",
		Guests:       2,
	})
	c, w := testContext(t, "POST", "/hotels/search", body)

	mockHotels.On("Search", mock.Anything, hotels.SearchInput{
		CityCode: "PAR", CheckInDate: "2024-06-01", CheckOutDate: "2024-06-05", Adults: 2,
	}).Return([]domain.HotelStay{{HotelName: "HOTEL ONE", OfferID: "offer-1", PriceTotal: "480.00"}}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "HOTEL ONE")
}

func TestHotelHandler_search_noHotels(t *testing.T) {
	mockHotels := &MockHotelUseCase{}
	handler := NewHotelHandler(mockHotels)

	body, _ := json.Marshal(hotelSearchRequest{
		CityCode: "XXX", CheckInDate: "2024-06-01", CheckOutDate: "2024-06-05",
	})
	c, w := testContext(t, "POST", "/hotels/search", body)

	mockHotels.On("Search", mock.Anything, mock.Anything).Return(nil, hotels.ErrNoHotels)

	handler.search(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No hotels found.")
}

func TestHotelHandler_search_missingDates(t *testing.T) {
	mockHotels := &MockHotelUseCase{}
	handler := NewHotelHandler(mockHotels)

	body, _ := json.Marshal(hotelSearchRequest{CityCode: "PAR"})
	c, w := testContext(t, "POST", "/hotels/search", body)

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockHotels.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestHotelHandler_rooms(t *testing.T) {
	mockHotels := &MockHotelUseCase{}
	handler := NewHotelHandler(mockHotels)

	c, w := testContext(t, "GET", "/hotels/HLPAR266/rooms?check_in_date=2024-06-01&check_out_date=2024-06-05", nil)
	c.Params = gin.Params{{Key: "hotelID", Value: "HLPAR266"}}

	mockHotels.On("Rooms", mock.Anything, "HLPAR266", "2024-06-01", "2024-06-05").
		Return([]domain.HotelStay{{RoomType: "A1K", Description: "Deluxe King Room"}}, nil)

	handler.rooms(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Deluxe King Room")
}

func TestHotelHandler_book(t *testing.T) {
	mockHotels := &MockHotelUseCase{}
	handler := NewHotelHandler(mockHotels)

	body, _ := json.Marshal(hotelBookRequest{OfferID: "offer-1"})
	c, w := testContext(t, "POST", "/hotels/book", body)
	withSession(c, 3, domain.RoleStaff)

	mockHotels.On("Book", mock.Anything, int64(3), "offer-1").
		Return(&domain.HotelBooking{ID: "booking-1", ConfirmationID: "CONF-77"}, nil)

	handler.book(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CONF-77")
}

func TestHotelHandler_book_roomUnavailable(t *testing.T) {
	mockHotels := &MockHotelUseCase{}
	handler := NewHotelHandler(mockHotels)

	body, _ := json.Marshal(hotelBookRequest{OfferID: "offer-1"})
	c, w := testContext(t, "POST", "/hotels/book", body)
	withSession(c, 3, domain.RoleStaff)

	mockHotels.On("Book", mock.Anything, int64(3), "offer-1").Return(nil, hotels.ErrRoomUnavailable)

	handler.book(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "The room is not available")
}

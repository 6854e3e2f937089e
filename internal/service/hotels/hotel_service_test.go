package hotels

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/thrivenig/travelbook/internal/amadeus"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/email"
	"github.com/thrivenig/travelbook/pkg/logger"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) HotelsByCity(ctx context.Context, cityCode string) ([]string, error) {
	args := m.Called(ctx, cityCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProvider) HotelOffers(ctx context.Context, params amadeus.HotelSearchParams) ([]amadeus.HotelListing, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]amadeus.HotelListing), args.Error(1)
}

func (m *MockProvider) HotelOfferAvailability(ctx context.Context, offerID string) (*amadeus.HotelListing, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.HotelListing), args.Error(1)
}

func (m *MockProvider) BookHotelOffer(ctx context.Context, offerID string, guests []amadeus.HotelGuest, payments []amadeus.HotelPayment) (*amadeus.HotelBookingRecord, error) {
	args := m.Called(ctx, offerID, guests, payments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.HotelBookingRecord), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) HotelBookingConfirmed(ctx context.Context, data email.HotelContext) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetIdentity(ctx context.Context, id int64) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

type fixture struct {
	provider  *MockProvider
	notifier  *MockNotifier
	directory *MockDirectory
	service   *HotelService
}

func newFixture() *fixture {
	f := &fixture{
		provider:  new(MockProvider),
		notifier:  new(MockNotifier),
		directory: new(MockDirectory),
	}
	f.service = NewHotelService(f.provider, f.notifier, f.directory, logger.Nop())
	return f
}

func sampleListing() amadeus.HotelListing {
	return amadeus.HotelListing{
		Hotel:     amadeus.HotelInfo{HotelID: "HLPAR266", Name: "HOTEL ONE", CityCode: "PAR"},
		Available: true,
		Offers: []amadeus.RoomOffer{{
			ID:           "offer-1",
			CheckInDate:  "2024-06-01",
			CheckOutDate: "2024-06-05",
			Room:         amadeus.RoomDetail{Type: "A1K", Description: amadeus.RoomDescription{Text: "Deluxe King Room"}},
			Guests:       amadeus.RoomGuests{Adults: 2},
			Price:        amadeus.HotelPrice{Currency: "EUR", Total: "480.00"},
		}},
	}
}

func TestSearch_FlattensOffersAcrossHotels(t *testing.T) {
	f := newFixture()

	f.provider.On("HotelsByCity", mock.Anything, "PAR").Return([]string{"HLPAR266"}, nil)
	f.provider.On("HotelOffers", mock.Anything, amadeus.HotelSearchParams{
		HotelIDs: []string{"HLPAR266"}, CheckInDate: "2024-06-01", CheckOutDate: "2024-06-05", Adults: 2,
	}).Return([]amadeus.HotelListing{sampleListing()}, nil)

	stays, err := f.service.Search(context.Background(), SearchInput{
		CityCode: "PAR", CheckInDate: "2024-06-01", CheckOutDate: "2024-06-05", Adults: 2,
	})

	assert.NoError(t, err)
	assert.Len(t, stays, 1)
	assert.Equal(t, "HOTEL ONE", stays[0].HotelName)
	assert.Equal(t, "offer-1", stays[0].OfferID)
	assert.Equal(t, "480.00", stays[0].PriceTotal)
}

func TestSearch_TruncatesCityListing(t *testing.T) {
	f := newFixture()

	ids := make([]string, 0, 55)
	for i := 0; i < 55; i++ {
		ids = append(ids, fmt.Sprintf("HL%03d", i))
	}
	f.provider.On("HotelsByCity", mock.Anything, "PAR").Return(ids, nil)
	f.provider.On("HotelOffers", mock.Anything, mock.MatchedBy(func(params amadeus.HotelSearchParams) bool {
		return len(params.HotelIDs) == 40 && params.HotelIDs[0] == "HL000"
	})).Return([]amadeus.HotelListing{sampleListing()}, nil)

	_, err := f.service.Search(context.Background(), SearchInput{
		CityCode: "PAR", CheckInDate: "2024-06-01", CheckOutDate: "2024-06-05", Adults: 1,
	})

	assert.NoError(t, err)
	f.provider.AssertExpectations(t)
}

func TestSearch_NoHotelsInCity(t *testing.T) {
	f := newFixture()

	f.provider.On("HotelsByCity", mock.Anything, "XXX").Return([]string{}, nil)

	_, err := f.service.Search(context.Background(), SearchInput{CityCode: "XXX"})

	assert.ErrorIs(t, err, ErrNoHotels)
	f.provider.AssertNotCalled(t, "HotelOffers", mock.Anything, mock.Anything)
}

func TestSearch_NoOffersIsNoHotels(t *testing.T) {
	f := newFixture()

	f.provider.On("HotelsByCity", mock.Anything, "PAR").Return([]string{"HLPAR266"}, nil)
	f.provider.On("HotelOffers", mock.Anything, mock.Anything).Return([]amadeus.HotelListing{}, nil)

	_, err := f.service.Search(context.Background(), SearchInput{CityCode: "PAR"})

	assert.ErrorIs(t, err, ErrNoHotels)
}

func TestRooms_SingleHotel(t *testing.T) {
	f := newFixture()

	f.provider.On("HotelOffers", mock.Anything, amadeus.HotelSearchParams{
		HotelIDs: []string{"HLPAR266"}, CheckInDate: "2024-06-01", CheckOutDate: "2024-06-05", Adults: 1,
	}).Return([]amadeus.HotelListing{sampleListing()}, nil)

	rooms, err := f.service.Rooms(context.Background(), "HLPAR266", "2024-06-01", "2024-06-05")

	assert.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, "A1K", rooms[0].RoomType)
	assert.Equal(t, "Deluxe King Room", rooms[0].Description)
}

func TestBook_PlacesBookingAndNotifies(t *testing.T) {
	f := newFixture()

	listing := sampleListing()
	f.provider.On("HotelOfferAvailability", mock.Anything, "offer-1").Return(&listing, nil)
	f.provider.On("BookHotelOffer", mock.Anything, "offer-1", amadeus.DefaultHotelGuests(), amadeus.DefaultHotelPayments()).
		Return(&amadeus.HotelBookingRecord{ID: "booking-1", ProviderConfirmationID: "CONF-77"}, nil)
	f.directory.On("GetIdentity", mock.Anything, int64(3)).Return(&domain.Identity{ID: 3, Username: "ada"}, nil)
	f.notifier.On("HotelBookingConfirmed", mock.Anything, email.HotelContext{
		Username:       "ada",
		HotelName:      "HOTEL ONE",
		CheckInDate:    "2024-06-01",
		CheckOutDate:   "2024-06-05",
		RoomType:       "A1K",
		BookingID:      "booking-1",
		ConfirmationID: "CONF-77",
		TotalPrice:     "480.00",
		Currency:       "EUR",
	}).Return(nil)

	booking, err := f.service.Book(context.Background(), 3, "offer-1")

	assert.NoError(t, err)
	assert.Equal(t, "booking-1", booking.ID)
	assert.Equal(t, "CONF-77", booking.ConfirmationID)
	f.notifier.AssertExpectations(t)
}

func TestBook_UnavailableOfferNeverBooks(t *testing.T) {
	f := newFixture()

	listing := sampleListing()
	listing.Available = false
	f.provider.On("HotelOfferAvailability", mock.Anything, "offer-1").Return(&listing, nil)

	_, err := f.service.Book(context.Background(), 3, "offer-1")

	assert.ErrorIs(t, err, ErrRoomUnavailable)
	f.provider.AssertNotCalled(t, "BookHotelOffer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_EmailFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()

	listing := sampleListing()
	f.provider.On("HotelOfferAvailability", mock.Anything, "offer-1").Return(&listing, nil)
	f.provider.On("BookHotelOffer", mock.Anything, "offer-1", mock.Anything, mock.Anything).
		Return(&amadeus.HotelBookingRecord{ID: "booking-1", ProviderConfirmationID: "CONF-77"}, nil)
	f.directory.On("GetIdentity", mock.Anything, int64(3)).Return(&domain.Identity{ID: 3, Username: "ada"}, nil)
	f.notifier.On("HotelBookingConfirmed", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	booking, err := f.service.Book(context.Background(), 3, "offer-1")

	assert.NoError(t, err)
	assert.Equal(t, "booking-1", booking.ID)
}

func TestBook_ProviderErrorSurfaces(t *testing.T) {
	f := newFixture()

	f.provider.On("HotelOfferAvailability", mock.Anything, "offer-1").Return(nil, errors.New("offer expired"))

	_, err := f.service.Book(context.Background(), 3, "offer-1")

	assert.EqualError(t, err, "offer expired")
}

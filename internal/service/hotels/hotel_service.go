package hotels

import (
	"context"
	"errors"

	"github.com/thrivenig/travelbook/internal/amadeus"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/email"
	"github.com/thrivenig/travelbook/pkg/logger"
)

var (
	// ErrNoHotels means the city resolved but the provider returned no
	// bookable hotels for the stay.
	ErrNoHotels = errors.New("no hotels found")

	// ErrRoomUnavailable means the chosen offer no longer has capacity.
	ErrRoomUnavailable = errors.New("the room is not available")
)

// maxHotelIDs caps how many hotel ids from the city listing are carried into
// the offers search. The provider rejects longer id lists.
const maxHotelIDs = 40

type SearchInput struct {
	CityCode     string
	CheckInDate  string
	CheckOutDate string
	Adults       int
}

type HotelUseCase interface {
	Search(ctx context.Context, input SearchInput) ([]domain.HotelStay, error)
	Rooms(ctx context.Context, hotelID, checkInDate, checkOutDate string) ([]domain.HotelStay, error)
	Book(ctx context.Context, callerID int64, offerID string) (*domain.HotelBooking, error)
}

type Provider interface {
	HotelsByCity(ctx context.Context, cityCode string) ([]string, error)
	HotelOffers(ctx context.Context, params amadeus.HotelSearchParams) ([]amadeus.HotelListing, error)
	HotelOfferAvailability(ctx context.Context, offerID string) (*amadeus.HotelListing, error)
	BookHotelOffer(ctx context.Context, offerID string, guests []amadeus.HotelGuest, payments []amadeus.HotelPayment) (*amadeus.HotelBookingRecord, error)
}

type Notifier interface {
	HotelBookingConfirmed(ctx context.Context, data email.HotelContext) error
}

type Directory interface {
	GetIdentity(ctx context.Context, id int64) (*domain.Identity, error)
}

type HotelService struct {
	provider  Provider
	notifier  Notifier
	directory Directory
	log       logger.Logger
}

func NewHotelService(provider Provider, notifier Notifier, directory Directory, log logger.Logger) *HotelService {
	return &HotelService{provider: provider, notifier: notifier, directory: directory, log: log}
}

// Search lists room offers across a city's hotels. The city listing is
// truncated before the offers search; hotels without offers are dropped.
func (s *HotelService) Search(ctx context.Context, input SearchInput) ([]domain.HotelStay, error) {
	ids, err := s.provider.HotelsByCity(ctx, input.CityCode)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoHotels
	}
	if len(ids) > maxHotelIDs {
		ids = ids[:maxHotelIDs]
	}

	listings, err := s.provider.HotelOffers(ctx, amadeus.HotelSearchParams{
		HotelIDs:     ids,
		CheckInDate:  input.CheckInDate,
		CheckOutDate: input.CheckOutDate,
		Adults:       input.Adults,
	})
	if err != nil {
		return nil, err
	}

	stays := flattenListings(listings)
	if len(stays) == 0 {
		return nil, ErrNoHotels
	}
	return stays, nil
}

// Rooms lists every offered room at one hotel for the stay.
func (s *HotelService) Rooms(ctx context.Context, hotelID, checkInDate, checkOutDate string) ([]domain.HotelStay, error) {
	listings, err := s.provider.HotelOffers(ctx, amadeus.HotelSearchParams{
		HotelIDs:     []string{hotelID},
		CheckInDate:  checkInDate,
		CheckOutDate: checkOutDate,
		Adults:       1,
	})
	if err != nil {
		return nil, err
	}

	rooms := flattenListings(listings)
	if len(rooms) == 0 {
		return nil, ErrNoHotels
	}
	return rooms, nil
}

// Book re-checks the offer, places the booking with the fixed guest and
// payment records, and notifies the operations mailbox. A failed notification
// never fails the booking.
func (s *HotelService) Book(ctx context.Context, callerID int64, offerID string) (*domain.HotelBooking, error) {
	listing, err := s.provider.HotelOfferAvailability(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !listing.Available || len(listing.Offers) == 0 {
		return nil, ErrRoomUnavailable
	}

	record, err := s.provider.BookHotelOffer(ctx, offerID, amadeus.DefaultHotelGuests(), amadeus.DefaultHotelPayments())
	if err != nil {
		return nil, err
	}

	booking := &domain.HotelBooking{ID: record.ID, ConfirmationID: record.ProviderConfirmationID}

	if err := s.notifier.HotelBookingConfirmed(ctx, s.confirmationContext(ctx, callerID, listing, booking)); err != nil {
		s.log.Error("hotel confirmation email failed", "booking_id", booking.ID, "error", err)
	}
	return booking, nil
}

func (s *HotelService) confirmationContext(ctx context.Context, callerID int64, listing *amadeus.HotelListing, booking *domain.HotelBooking) email.HotelContext {
	data := email.HotelContext{
		HotelName:      listing.Hotel.Name,
		BookingID:      booking.ID,
		ConfirmationID: booking.ConfirmationID,
	}
	offer := listing.Offers[0]
	data.CheckInDate = offer.CheckInDate
	data.CheckOutDate = offer.CheckOutDate
	data.RoomType = offer.Room.Type
	data.TotalPrice = offer.Price.Total
	data.Currency = offer.Price.Currency

	if caller, err := s.directory.GetIdentity(ctx, callerID); err == nil {
		data.Username = caller.Username
	} else {
		s.log.Warn("caller lookup for hotel email failed", "identity_id", callerID, "error", err)
	}
	return data
}

func flattenListings(listings []amadeus.HotelListing) []domain.HotelStay {
	var stays []domain.HotelStay
	for _, listing := range listings {
		for _, offer := range listing.Offers {
			stays = append(stays, domain.HotelStay{
				HotelID:      listing.Hotel.HotelID,
				HotelName:    listing.Hotel.Name,
				CityCode:     listing.Hotel.CityCode,
				OfferID:      offer.ID,
				CheckInDate:  offer.CheckInDate,
				CheckOutDate: offer.CheckOutDate,
				RoomType:     offer.Room.Type,
				Description:  offer.Room.Description.Text,
				Adults:       offer.Guests.Adults,
				PriceTotal:   offer.Price.Total,
				Currency:     offer.Price.Currency,
			})
		}
	}
	return stays
}

var _ HotelUseCase = (*HotelService)(nil)

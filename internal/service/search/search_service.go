package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thrivenig/travelbook/internal/amadeus"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/pkg/logger"
)

// ErrNoItinerary means the provider answered successfully with zero offers.
var ErrNoItinerary = errors.New("no flight itinerary for this route")

type SearchUseCase interface {
	Search(ctx context.Context, params amadeus.SearchParams) ([]domain.Offer, error)
	LocationLookahead(ctx context.Context, term string) ([]string, error)
	TripPurpose(ctx context.Context, params amadeus.SearchParams) (string, error)
}

type Provider interface {
	SearchOffers(ctx context.Context, params amadeus.SearchParams) ([]amadeus.FlightOffer, []json.RawMessage, error)
	Locations(ctx context.Context, keyword string) ([]amadeus.Location, error)
	TripPurpose(ctx context.Context, origin, destination, departureDate, returnDate string) (string, error)
}

type Cache interface {
	GetOffers(ctx context.Context, key string) ([]domain.Offer, error)
	SetOffers(ctx context.Context, key string, offers []domain.Offer) error
}

type SearchService struct {
	provider Provider
	cache    Cache
	log      logger.Logger
}

func NewSearchService(provider Provider, cache Cache, log logger.Logger) *SearchService {
	return &SearchService{provider: provider, cache: cache, log: log}
}

// Search is a read-through over the provider: cache errors are ignored,
// provider errors surface to the caller as-is (they already carry the
// provider's first reported detail).
func (s *SearchService) Search(ctx context.Context, params amadeus.SearchParams) ([]domain.Offer, error) {
	key := searchKey(params)
	if s.cache != nil {
		if cached, err := s.cache.GetOffers(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	decoded, raw, err := s.provider.SearchOffers(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(decoded) == 0 {
		return nil, ErrNoItinerary
	}

	offers := make([]domain.Offer, 0, len(decoded))
	for i, offer := range decoded {
		offers = append(offers, toDisplayOffer(offer, raw[i]))
	}

	if s.cache != nil {
		if err := s.cache.SetOffers(ctx, key, offers); err != nil {
			s.log.Warn("offer cache write failed", "key", key, "error", err)
		}
	}
	return offers, nil
}

// LocationLookahead maps provider locations to "IATA, Name" strings with
// duplicates removed, order preserved.
func (s *SearchService) LocationLookahead(ctx context.Context, term string) ([]string, error) {
	locations, err := s.provider.Locations(ctx, term)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(locations))
	result := make([]string, 0, len(locations))
	for _, loc := range locations {
		entry := loc.IataCode + ", " + loc.Name
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		result = append(result, entry)
	}
	return result, nil
}

// TripPurpose predicts whether a round trip is business or leisure travel.
// Only meaningful with a return date; one-way trips get no prediction.
func (s *SearchService) TripPurpose(ctx context.Context, params amadeus.SearchParams) (string, error) {
	if params.ReturnDate == "" {
		return "", nil
	}
	return s.provider.TripPurpose(ctx, params.Origin, params.Destination, params.DepartureDate, params.ReturnDate)
}

func toDisplayOffer(offer amadeus.FlightOffer, raw json.RawMessage) domain.Offer {
	display := domain.Offer{
		PriceTotal: offer.Price.Total,
		Currency:   offer.Price.Currency,
		Passengers: len(offer.TravelerPricings),
		Raw:        raw,
	}
	if len(offer.TravelerPricings) > 0 && len(offer.TravelerPricings[0].FareDetailsBySegment) > 0 {
		display.Cabin = offer.TravelerPricings[0].FareDetailsBySegment[0].Cabin
	}
	for _, itinerary := range offer.Itineraries {
		for _, seg := range itinerary.Segments {
			display.Legs = append(display.Legs, domain.OfferLeg{
				Carrier:       seg.CarrierCode,
				FlightNumber:  seg.CarrierCode + seg.Number,
				Origin:        seg.Departure.IataCode,
				Destination:   seg.Arrival.IataCode,
				DepartureTime: seg.Departure.At,
				ArrivalTime:   seg.Arrival.At,
			})
		}
	}
	return display
}

func searchKey(params amadeus.SearchParams) string {
	return strings.ToUpper(fmt.Sprintf("%s:%s:%s:%s:%d",
		params.Origin, params.Destination, params.DepartureDate, params.ReturnDate, params.Adults))
}

var _ SearchUseCase = (*SearchService)(nil)

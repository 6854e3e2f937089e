package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thrivenig/travelbook/internal/amadeus"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/service/booking"
	"github.com/thrivenig/travelbook/internal/service/search"
)

type FlightHandler struct {
	search  search.SearchUseCase
	booking booking.BookingUseCase
}

func NewFlightHandler(searchService search.SearchUseCase, bookingService booking.BookingUseCase) *FlightHandler {
	return &FlightHandler{search: searchService, booking: bookingService}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.searchOffers)
	router.GET("/airports", h.airports)
	router.POST("/requests", h.createRequest)
	router.GET("/requests", h.listRequests)
	router.POST("/book", h.book)
}

type searchRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`
	Adults        int    `json:"adults"`
}

func (h *FlightHandler) searchOffers(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Adults <= 0 {
		req.Adults = 1
	}

	params := amadeus.SearchParams{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Adults,
	}

	// Round trips carry a trip-purpose prediction; a failed prediction
	// aborts the search.
	tripPurpose := ""
	if req.ReturnDate != "" {
		purpose, err := h.search.TripPurpose(c.Request.Context(), params)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		tripPurpose = purpose
	}

	offers, err := h.search.Search(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, search.ErrNoItinerary) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"offers": offers}
	if tripPurpose != "" {
		response["trip_purpose"] = tripPurpose
	}
	c.JSON(http.StatusOK, response)
}

func (h *FlightHandler) airports(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term query parameter is required"})
		return
	}

	entries, err := h.search.LocationLookahead(c.Request.Context(), term)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// createRequest records a chosen offer in the ledger without attempting a
// booking. The body is the raw offer payload.
func (h *FlightHandler) createRequest(c *gin.Context) {
	session := sessionFrom(c)
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, _, err := h.booking.CreateRequest(c.Request.Context(), session.IdentityID, payload)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, requestResponse(request))
}

func (h *FlightHandler) listRequests(c *gin.Context) {
	session := sessionFrom(c)

	var (
		requests []domain.FlightRequest
		err      error
	)
	if c.Query("approved") == "true" {
		requests, err = h.booking.ApprovedRequests(c.Request.Context(), session.IdentityID)
	} else {
		requests, err = h.booking.PendingRequests(c.Request.Context(), session.IdentityID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, requestListResponse(requests))
}

// book runs the full booking attempt: the offer is recorded, matched against
// approved entries, and on a match the provider order sequence runs. The
// response message never distinguishes a placed order from a deferred one
// beyond its wording.
func (h *FlightHandler) book(c *gin.Context) {
	session := sessionFrom(c)
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.booking.Book(c.Request.Context(), session.IdentityID, payload)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch result.Outcome {
	case domain.OutcomeBooked:
		c.JSON(http.StatusOK, gin.H{
			"message":  fmt.Sprintf("Flight Booked %s. Please check your mails.", result.Owner.Username),
			"order_id": result.Order.ID,
			"records":  result.Order.References,
		})
	case domain.OutcomeDeferred:
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Flight Booked %s. Please check your mails.", result.Owner.Username),
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "Your flight hasn't been approved yet.",
		})
	}
}

type flightRequestJSON struct {
	ID             int64  `json:"id"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	DepartureDate  string `json:"departure_date"`
	ReturnDate     string `json:"return_date,omitempty"`
	PassengerCount int    `json:"passenger_count"`
	TravelClass    string `json:"travel_class"`
	Price          string `json:"price"`
	Approved       bool   `json:"approved"`
}

func requestResponse(request *domain.FlightRequest) flightRequestJSON {
	out := flightRequestJSON{
		ID:             request.ID,
		Origin:         request.Origin,
		Destination:    request.Destination,
		DepartureDate:  request.DepartureDate.Format("2006-01-02"),
		PassengerCount: request.PassengerCount,
		TravelClass:    request.TravelClass,
		Price:          fmt.Sprintf("%d.%02d", request.PriceCents/100, request.PriceCents%100),
		Approved:       request.Approved,
	}
	if request.ReturnDate != nil {
		out.ReturnDate = request.ReturnDate.Format("2006-01-02")
	}
	return out
}

func requestListResponse(requests []domain.FlightRequest) []flightRequestJSON {
	out := make([]flightRequestJSON, 0, len(requests))
	for i := range requests {
		out = append(out, requestResponse(&requests[i]))
	}
	return out
}

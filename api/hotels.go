package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thrivenig/travelbook/internal/service/hotels"
)

type HotelHandler struct {
	hotels hotels.HotelUseCase
}

func NewHotelHandler(hotelService hotels.HotelUseCase) *HotelHandler {
	return &HotelHandler{hotels: hotelService}
}

func (h *HotelHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.search)
	router.GET("/:hotelID/rooms", h.rooms)
	router.POST("/book", h.book)
}

type hotelSearchRequest struct {
	CityCode     string `json:"city_code"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Guests       int    `json:"guests"`
}

func (h *HotelHandler) search(c *gin.Context) {
	var req hotelSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CityCode == "" || req.CheckInDate == "" || req.CheckOutDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city_code, check_in_date and check_out_date are required"})
		return
	}
	if req.Guests <= 0 {
		req.Guests = 1
	}

	stays, err := h.hotels.Search(c.Request.Context(), hotels.SearchInput{
		CityCode:     req.CityCode,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
		Adults:       req.Guests,
	})
	if err != nil {
		if errors.Is(err, hotels.ErrNoHotels) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No hotels found."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotels": stays})
}

func (h *HotelHandler) rooms(c *gin.Context) {
	checkIn := c.Query("check_in_date")
	checkOut := c.Query("check_out_date")
	if checkIn == "" || checkOut == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in_date and check_out_date are required"})
		return
	}

	rooms, err := h.hotels.Rooms(c.Request.Context(), c.Param("hotelID"), checkIn, checkOut)
	if err != nil {
		if errors.Is(err, hotels.ErrNoHotels) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No hotels found."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

type hotelBookRequest struct {
	OfferID string `json:"offer_id"`
}

func (h *HotelHandler) book(c *gin.Context) {
	session := sessionFrom(c)

	var req hotelBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.OfferID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offer_id is required"})
		return
	}

	booking, err := h.hotels.Book(c.Request.Context(), session.IdentityID, req.OfferID)
	if err != nil {
		if errors.Is(err, hotels.ErrRoomUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": "The room is not available"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                       booking.ID,
		"provider_confirmation_id": booking.ConfirmationID,
	})
}

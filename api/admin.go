package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/repository"
	"github.com/thrivenig/travelbook/internal/service/booking"
	"github.com/thrivenig/travelbook/internal/service/identity"
)

type AdminHandler struct {
	identity identity.IdentityUseCase
	booking  booking.BookingUseCase
	pricing  repository.PricingRepository
}

func NewAdminHandler(identityService identity.IdentityUseCase, bookingService booking.BookingUseCase, pricing repository.PricingRepository) *AdminHandler {
	return &AdminHandler{identity: identityService, booking: bookingService, pricing: pricing}
}

// Register mounts the administrator routes. The pricing routes additionally
// require the top administrator kind.
func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/requests/pending", h.pendingRequests)
	router.POST("/requests/approve", h.approveRequests)
	router.GET("/admins/pending", h.pendingAdmins)
	router.POST("/admins/:roleID/approve", h.approveAdmin)

	pricing := router.Group("/pricing", RequireKind(domain.RoleTopAdmin))
	pricing.GET("", h.getPricing)
	pricing.PUT("", h.updatePricing)
}

func (h *AdminHandler) pendingRequests(c *gin.Context) {
	requests, err := h.booking.PendingApprovals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requestListResponse(requests))
}

type approveRequestsBody struct {
	IDs []int64 `json:"ids"`
}

func (h *AdminHandler) approveRequests(c *gin.Context) {
	session := sessionFrom(c)

	var body approveRequestsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids is required"})
		return
	}

	approved, err := h.booking.ApproveRequests(c.Request.Context(), session.IdentityID, body.IDs)
	if err != nil {
		if errors.Is(err, booking.ErrNotApprovedAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"approved": requestListResponse(approved)})
}

func (h *AdminHandler) pendingAdmins(c *gin.Context) {
	kind := domain.RoleAdmin
	if c.Query("kind") == "top_admin" {
		kind = domain.RoleTopAdmin
	}

	profiles, err := h.identity.PendingAdmins(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, gin.H{
			"role_id":    p.ID,
			"username":   p.Username,
			"email":      p.Email,
			"first_name": p.FirstName,
			"last_name":  p.LastName,
			"kind":       string(p.Kind),
		})
	}
	c.JSON(http.StatusOK, out)
}

type approveAdminBody struct {
	Approve bool `json:"approve"`
}

func (h *AdminHandler) approveAdmin(c *gin.Context) {
	session := sessionFrom(c)

	roleID, err := strconv.ParseInt(c.Param("roleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}

	body := approveAdminBody{Approve: true}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	role, err := h.identity.ApproveAdmin(c.Request.Context(), session.IdentityID, roleID, body.Approve)
	if err != nil {
		if errors.Is(err, identity.ErrNotApprovedAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"role_id": role.ID, "approved": role.ApprovalStatus})
}

func (h *AdminHandler) getPricing(c *gin.Context) {
	markup, err := h.pricing.Markup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"markup": markup.String()})
}

type updatePricingBody struct {
	Markup string `json:"markup"`
}

func (h *AdminHandler) updatePricing(c *gin.Context) {
	var body updatePricingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	markup, err := decimal.NewFromString(body.Markup)
	if err != nil || markup.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "markup must be a non-negative number"})
		return
	}

	if err := h.pricing.Update(c.Request.Context(), markup); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"markup": markup.String()})
}

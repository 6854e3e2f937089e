package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/repository"
	"github.com/thrivenig/travelbook/internal/service/identity"
)

type AuthHandler struct {
	service identity.IdentityUseCase
}

func NewAuthHandler(service identity.IdentityUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/:role/register", h.register)
	router.POST("/:role/login", h.login)
}

// RegisterProfile mounts the authenticated profile routes.
func (h *AuthHandler) RegisterProfile(router *gin.RouterGroup) {
	router.GET("/profile", h.profile)
	router.PUT("/profile", h.updateProfile)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// roleKindFromParam maps the URL role segment to a role kind. The three
// segments are the only login doors; anything else is a 404-style refusal.
func roleKindFromParam(param string) (domain.RoleKind, bool) {
	switch param {
	case "staff":
		return domain.RoleStaff, true
	case "admin":
		return domain.RoleAdmin, true
	case "topadmin":
		return domain.RoleTopAdmin, true
	}
	return "", false
}

func (h *AuthHandler) register(c *gin.Context) {
	kind, ok := roleKindFromParam(c.Param("role"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown role"})
		return
	}

	var input identity.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.service.Register(c.Request.Context(), kind, input)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"id": account.ID, "username": account.Username}
	if kind != domain.RoleStaff {
		response["message"] = "Your account is awaiting approval from an existing admin."
	}
	c.JSON(http.StatusCreated, response)
}

func (h *AuthHandler) login(c *gin.Context) {
	kind, ok := roleKindFromParam(c.Param("role"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown role"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password, kind)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAwaitingApproval):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrNoSuchRole):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": string(kind)})
}

func (h *AuthHandler) profile(c *gin.Context) {
	session := sessionFrom(c)
	account, role, err := h.service.Profile(c.Request.Context(), session.IdentityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":   account.Username,
		"email":      account.Email,
		"phone":      account.Phone,
		"first_name": role.FirstName,
		"last_name":  role.LastName,
		"role":       string(role.Kind),
		"approved":   role.ApprovalStatus,
	})
}

func (h *AuthHandler) updateProfile(c *gin.Context) {
	session := sessionFrom(c)

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateProfile(c.Request.Context(), session.IdentityID, req.FirstName, req.LastName, req.Phone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

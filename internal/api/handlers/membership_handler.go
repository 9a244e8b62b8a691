package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/services"
)

// MembershipHandler handles membership endpoints.
type MembershipHandler struct {
	membershipService services.IMembershipService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService services.IMembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

type createMembershipRequest struct {
	CustomerID     string  `json:"customer_id" binding:"required"`
	MembershipType string  `json:"membership_type" binding:"required"`
	Price          float64 `json:"price"`
	Notes          string  `json:"notes"`
}

// Create handles POST /api/memberships
func (h *MembershipHandler) Create(c *gin.Context) {
	var req createMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membershipType := models.MembershipType(req.MembershipType)
	if !models.ValidMembershipType(membershipType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership type"})
		return
	}

	membership, err := h.membershipService.Create(c.Request.Context(), req.CustomerID, membershipType, req.Price, req.Notes)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create membership"})
		}
		return
	}

	c.JSON(http.StatusCreated, membership)
}

// List handles GET /api/memberships. An optional customer_id query
// parameter narrows the listing to one customer.
func (h *MembershipHandler) List(c *gin.Context) {
	var (
		memberships []models.Membership
		err         error
	)
	if customerID := c.Query("customer_id"); customerID != "" {
		memberships, err = h.membershipService.ListByCustomer(c.Request.Context(), customerID)
	} else {
		memberships, err = h.membershipService.List(c.Request.Context())
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list memberships"})
		return
	}
	c.JSON(http.StatusOK, memberships)
}

// ListExpiringSoon handles GET /api/memberships/expiring-soon
func (h *MembershipHandler) ListExpiringSoon(c *gin.Context) {
	memberships, err := h.membershipService.ListExpiringSoon(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list expiring memberships"})
		return
	}
	c.JSON(http.StatusOK, memberships)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/services"
)

// PublicHandler serves the unauthenticated customer-facing endpoints.
type PublicHandler struct {
	customerService   services.ICustomerService
	membershipService services.IMembershipService
	catalogService    services.ICatalogService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(customerService services.ICustomerService, membershipService services.IMembershipService, catalogService services.ICatalogService) *PublicHandler {
	return &PublicHandler{
		customerService:   customerService,
		membershipService: membershipService,
		catalogService:    catalogService,
	}
}

type checkMembershipRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// CheckMembership handles POST /api/public/check-membership
// Customers look themselves up by phone number; no authentication.
func (h *PublicHandler) CheckMembership(c *gin.Context) {
	var req checkMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerService.FindByPhone(c.Request.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, gin.H{"has_membership": false})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		}
		return
	}

	memberships, err := h.membershipService.ListByCustomer(c.Request.Context(), customer.ID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}

	// Report the membership ending last; expired ones do not count.
	var current *models.Membership
	for i := range memberships {
		if memberships[i].Status == models.MembershipExpired {
			continue
		}
		if current == nil || memberships[i].EndDate.After(current.EndDate) {
			current = &memberships[i]
		}
	}

	if current == nil {
		c.JSON(http.StatusOK, gin.H{
			"has_membership": false,
			"customer_name":  customer.Name,
		})
		return
	}

	daysRemaining := int(time.Until(current.EndDate).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	current.DaysRemaining = &daysRemaining

	c.JSON(http.StatusOK, gin.H{
		"has_membership": true,
		"customer_name":  customer.Name,
		"membership":     current,
	})
}

// ListServices handles GET /api/public/services
func (h *PublicHandler) ListServices(c *gin.Context) {
	washServices, err := h.catalogService.ListActiveWashServices(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list services"})
		return
	}
	c.JSON(http.StatusOK, washServices)
}

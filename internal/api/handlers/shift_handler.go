package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/api/middleware"
	"github.com/Starlight373/Car-wash/internal/services"
)

// ShiftHandler handles cashier shift endpoints.
type ShiftHandler struct {
	shiftService services.IShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(shiftService services.IShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

type openShiftRequest struct {
	KasirID        string  `json:"kasir_id"`
	OpeningBalance float64 `json:"opening_balance"`
}

// Open handles POST /api/shifts/open
// The shift opens for the kasir named in the body; when the body omits
// kasir_id it opens for the authenticated user.
func (h *ShiftHandler) Open(c *gin.Context) {
	var req openShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kasirID := req.KasirID
	if kasirID == "" {
		kasirID = c.GetString(middleware.ContextKeyUserID)
	}

	shift, err := h.shiftService.Open(c.Request.Context(), kasirID, req.OpeningBalance)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrShiftAlreadyOpen):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Kasir already has an open shift"})
		case errors.Is(err, services.ErrNegativeBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Opening balance must not be negative"})
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Kasir not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open shift"})
		}
		return
	}

	c.JSON(http.StatusCreated, shift)
}

type closeShiftRequest struct {
	ShiftID        string  `json:"shift_id" binding:"required"`
	ClosingBalance float64 `json:"closing_balance"`
	Notes          string  `json:"notes"`
}

// Close handles POST /api/shifts/close
func (h *ShiftHandler) Close(c *gin.Context) {
	var req closeShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shift, err := h.shiftService.Close(c.Request.Context(), req.ShiftID, req.ClosingBalance, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Shift not found"})
		case errors.Is(err, services.ErrShiftClosed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Shift is already closed"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close shift"})
		}
		return
	}

	c.JSON(http.StatusOK, shift)
}

// Current handles GET /api/shifts/current/:kasir_id
// Responds 200 with a null body when the kasir has no open shift.
func (h *ShiftHandler) Current(c *gin.Context) {
	kasirID := c.Param("kasir_id")

	shift, err := h.shiftService.Current(c.Request.Context(), kasirID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve current shift"})
		return
	}

	c.JSON(http.StatusOK, shift)
}

// List handles GET /api/shifts
func (h *ShiftHandler) List(c *gin.Context) {
	shifts, err := h.shiftService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list shifts"})
		return
	}
	c.JSON(http.StatusOK, shifts)
}

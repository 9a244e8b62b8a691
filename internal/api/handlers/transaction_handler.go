package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Starlight373/Car-wash/internal/api/middleware"
	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/services"
)

// TransactionHandler handles sale recording and listing endpoints.
type TransactionHandler struct {
	transactionService services.ITransactionService
	userService        services.IUserService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.ITransactionService, userService services.IUserService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		userService:        userService,
	}
}

type transactionItemRequest struct {
	ItemID   string  `json:"item_id" binding:"required"`
	ItemType string  `json:"item_type" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity" binding:"required,min=1"`
}

type createTransactionRequest struct {
	CustomerID      string                   `json:"customer_id"`
	Items           []transactionItemRequest `json:"items" binding:"required"`
	PaymentMethod   string                   `json:"payment_method" binding:"required"`
	PaymentReceived float64                  `json:"payment_received"`
	Notes           string                   `json:"notes"`
}

// Create handles POST /api/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if !models.ValidPaymentMethod(method) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
		return
	}

	kasirID := c.GetString(middleware.ContextKeyUserID)
	kasirName := kasirID
	if kasir, err := h.userService.FindByID(c.Request.Context(), kasirID); err == nil {
		kasirName = kasir.FullName
	}

	items := make([]models.TransactionItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.TransactionItem{
			ItemID:   item.ItemID,
			ItemType: item.ItemType,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	input := services.TransactionInput{
		CustomerID:      req.CustomerID,
		Items:           items,
		PaymentMethod:   method,
		PaymentReceived: req.PaymentReceived,
		Notes:           req.Notes,
	}

	transaction, err := h.transactionService.Create(c.Request.Context(), kasirID, kasirName, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoOpenShift):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No open shift. Open a shift before recording sales"})
		case errors.Is(err, services.ErrInsufficientPayment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment received is less than the total"})
		case errors.Is(err, services.ErrNoItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction must have at least one item"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		}
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// List handles GET /api/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	transactions, err := h.transactionService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// ListToday handles GET /api/transactions/today
func (h *TransactionHandler) ListToday(c *gin.Context) {
	transactions, err := h.transactionService.ListToday(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list today's transactions"})
		return
	}
	c.JSON(http.StatusOK, transactions)
}

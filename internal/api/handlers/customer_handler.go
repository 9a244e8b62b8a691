package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/services"
)

// CustomerHandler handles customer record endpoints.
type CustomerHandler struct {
	customerService    services.ICustomerService
	transactionService services.ITransactionService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerService services.ICustomerService, transactionService services.ITransactionService) *CustomerHandler {
	return &CustomerHandler{
		customerService:    customerService,
		transactionService: transactionService,
	}
}

type createCustomerRequest struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
}

// Create handles POST /api/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req.Name, req.Phone, req.Email, req.VehicleNumber, req.VehicleType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// List handles GET /api/customers
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customerService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Get handles GET /api/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customerService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve customer"})
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

type updateCustomerRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	VehicleNumber *string `json:"vehicle_number"`
	VehicleType   *string `json:"vehicle_type"`
}

// Update handles PUT /api/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.CustomerUpdate{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
	}

	customer, err := h.customerService.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

// ListTransactions handles GET /api/customers/:id/transactions
func (h *CustomerHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list customer transactions"})
		return
	}
	c.JSON(http.StatusOK, transactions)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/services"
)

// InventoryHandler handles stock item endpoints.
type InventoryHandler struct {
	inventoryService services.IInventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(inventoryService services.IInventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Create handles POST /api/inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item.Name == "" || item.SKU == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item name and SKU are required"})
		return
	}

	created, err := h.inventoryService.Create(c.Request.Context(), item)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory item"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List handles GET /api/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.inventoryService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list inventory"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /api/inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	item, err := h.inventoryService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory item"})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

type updateInventoryRequest struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Unit         *string  `json:"unit"`
	CurrentStock *float64 `json:"current_stock"`
	MinStock     *float64 `json:"min_stock"`
	MaxStock     *float64 `json:"max_stock"`
	UnitCost     *float64 `json:"unit_cost"`
	Supplier     *string  `json:"supplier"`
	IsActive     *bool    `json:"is_active"`
}

// Update handles PUT /api/inventory/:id
func (h *InventoryHandler) Update(c *gin.Context) {
	var req updateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.InventoryUpdate{
		Name:         req.Name,
		Category:     req.Category,
		Unit:         req.Unit,
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
		MaxStock:     req.MaxStock,
		UnitCost:     req.UnitCost,
		Supplier:     req.Supplier,
		IsActive:     req.IsActive,
	}

	item, err := h.inventoryService.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /api/inventory/:id
func (h *InventoryHandler) Delete(c *gin.Context) {
	err := h.inventoryService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory item"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted"})
}

// ListLowStock handles GET /api/inventory/low-stock
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list low stock items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

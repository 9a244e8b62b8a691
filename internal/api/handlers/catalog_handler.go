package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/services"
)

// CatalogHandler handles wash service and product endpoints.
type CatalogHandler struct {
	catalogService services.ICatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService services.ICatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateWashService handles POST /api/services
func (h *CatalogHandler) CreateWashService(c *gin.Context) {
	var svc models.WashService
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if svc.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service name is required"})
		return
	}

	created, err := h.catalogService.CreateWashService(c.Request.Context(), svc)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListWashServices handles GET /api/services
func (h *CatalogHandler) ListWashServices(c *gin.Context) {
	washServices, err := h.catalogService.ListActiveWashServices(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list services"})
		return
	}
	c.JSON(http.StatusOK, washServices)
}

// GetWashService handles GET /api/services/:id
func (h *CatalogHandler) GetWashService(c *gin.Context) {
	svc, err := h.catalogService.FindWashServiceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve service"})
		}
		return
	}
	c.JSON(http.StatusOK, svc)
}

type updateWashServiceRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *float64         `json:"price"`
	DurationMinutes *int             `json:"duration_minutes"`
	Category        *string          `json:"category"`
	IsActive        *bool            `json:"is_active"`
	BOM             []models.BOMItem `json:"bom"`
}

// UpdateWashService handles PUT /api/services/:id
func (h *CatalogHandler) UpdateWashService(c *gin.Context) {
	var req updateWashServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.WashServiceUpdate{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Category:        req.Category,
		IsActive:        req.IsActive,
		BOM:             req.BOM,
	}

	svc, err := h.catalogService.UpdateWashService(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
		}
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateProduct handles POST /api/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if product.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
		return
	}

	created, err := h.catalogService.CreateProduct(c.Request.Context(), product)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListActiveProducts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	InventoryID *string  `json:"inventory_id"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateProduct handles PUT /api/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		InventoryID: req.InventoryID,
		IsActive:    req.IsActive,
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

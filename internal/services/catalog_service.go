package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
)

// WashServiceUpdate carries optional field updates for a wash service.
type WashServiceUpdate struct {
	Name            *string
	Description     *string
	Price           *float64
	DurationMinutes *int
	Category        *string
	IsActive        *bool
	BOM             []models.BOMItem // nil leaves the BOM untouched
}

// ProductUpdate carries optional field updates for a product.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InventoryID *string
	IsActive    *bool
}

// ICatalogService manages the sellable catalog: wash services and products.
type ICatalogService interface {
	CreateWashService(ctx context.Context, svc models.WashService) (*models.WashService, error)
	FindWashServiceByID(ctx context.Context, serviceID string) (*models.WashService, error)
	ListActiveWashServices(ctx context.Context) ([]models.WashService, error)
	UpdateWashService(ctx context.Context, serviceID string, update WashServiceUpdate) (*models.WashService, error)

	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, productID string, update ProductUpdate) (*models.Product, error)
}

const (
	washServicesCollection = "wash_services"
	productsCollection     = "products"
)

// catalogService implements ICatalogService.
type catalogService struct {
	db *mongo.Database
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *mongo.Database) ICatalogService {
	return &catalogService{db: db}
}

// CreateWashService adds a wash service to the catalog, active by default.
func (s *catalogService) CreateWashService(ctx context.Context, svc models.WashService) (*models.WashService, error) {
	svc.GenIDIfEmpty()
	svc.IsActive = true
	if _, err := s.db.Collection(washServicesCollection).InsertOne(ctx, &svc); err != nil {
		return nil, fmt.Errorf("error inserting wash service %s: %w", svc.Name, err)
	}
	return &svc, nil
}

// FindWashServiceByID finds a wash service by ID.
func (s *catalogService) FindWashServiceByID(ctx context.Context, serviceID string) (*models.WashService, error) {
	var svc models.WashService
	err := s.db.Collection(washServicesCollection).FindOne(ctx, bson.M{"_id": serviceID}).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding wash service %s: %w", serviceID, err)
	}
	return &svc, nil
}

// ListActiveWashServices returns active wash services only.
func (s *catalogService) ListActiveWashServices(ctx context.Context) ([]models.WashService, error) {
	cursor, err := s.db.Collection(washServicesCollection).Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query wash services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.WashService
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode wash services: %w", err)
	}
	return services, nil
}

// UpdateWashService applies the non-nil fields of update and returns the
// updated record.
func (s *catalogService) UpdateWashService(ctx context.Context, serviceID string, update WashServiceUpdate) (*models.WashService, error) {
	svc, err := s.FindWashServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
		svc.Name = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
		svc.Description = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
		svc.Price = *update.Price
	}
	if update.DurationMinutes != nil {
		set["duration_minutes"] = *update.DurationMinutes
		svc.DurationMinutes = *update.DurationMinutes
	}
	if update.Category != nil {
		set["category"] = *update.Category
		svc.Category = *update.Category
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
		svc.IsActive = *update.IsActive
	}
	if update.BOM != nil {
		set["bom"] = update.BOM
		svc.BOM = update.BOM
	}
	if len(set) == 0 {
		return svc, nil
	}

	if _, err := s.db.Collection(washServicesCollection).UpdateOne(ctx, bson.M{"_id": serviceID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("error updating wash service %s: %w", serviceID, err)
	}
	return svc, nil
}

// CreateProduct adds a physical product, active by default.
func (s *catalogService) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	product.GenIDIfEmpty()
	product.IsActive = true
	if _, err := s.db.Collection(productsCollection).InsertOne(ctx, &product); err != nil {
		return nil, fmt.Errorf("error inserting product %s: %w", product.Name, err)
	}
	return &product, nil
}

// ListActiveProducts returns active products only.
func (s *catalogService) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.db.Collection(productsCollection).Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies the non-nil fields of update and returns the
// updated record.
func (s *catalogService) UpdateProduct(ctx context.Context, productID string, update ProductUpdate) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding product %s: %w", productID, err)
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
		product.Name = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
		product.Description = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
		product.Price = *update.Price
	}
	if update.Category != nil {
		set["category"] = *update.Category
		product.Category = *update.Category
	}
	if update.InventoryID != nil {
		set["inventory_id"] = *update.InventoryID
		product.InventoryID = *update.InventoryID
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
		product.IsActive = *update.IsActive
	}
	if len(set) == 0 {
		return &product, nil
	}

	if _, err := s.db.Collection(productsCollection).UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("error updating product %s: %w", productID, err)
	}
	return &product, nil
}

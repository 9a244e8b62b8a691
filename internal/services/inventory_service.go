package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
)

// InventoryUpdate carries optional field updates for an inventory item.
type InventoryUpdate struct {
	Name         *string
	Category     *string
	Unit         *string
	CurrentStock *float64
	MinStock     *float64
	MaxStock     *float64
	UnitCost     *float64
	Supplier     *string
	IsActive     *bool
}

// IInventoryService defines the interface for inventory tracking.
type IInventoryService interface {
	Create(ctx context.Context, item models.InventoryItem) (*models.InventoryItem, error)
	FindByID(ctx context.Context, itemID string) (*models.InventoryItem, error)
	List(ctx context.Context) ([]models.InventoryItem, error)
	Update(ctx context.Context, itemID string, update InventoryUpdate) (*models.InventoryItem, error)
	Delete(ctx context.Context, itemID string) error
	ListLowStock(ctx context.Context) ([]models.InventoryItem, error)
}

const inventoryCollection = "inventory"

// inventoryService implements IInventoryService.
type inventoryService struct {
	db *mongo.Database
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(db *mongo.Database) IInventoryService {
	return &inventoryService{db: db}
}

// Create adds an inventory item, active by default.
func (s *inventoryService) Create(ctx context.Context, item models.InventoryItem) (*models.InventoryItem, error) {
	item.GenIDIfEmpty()
	item.IsActive = true
	if _, err := s.db.Collection(inventoryCollection).InsertOne(ctx, &item); err != nil {
		return nil, fmt.Errorf("error inserting inventory item %s: %w", item.SKU, err)
	}
	return &item, nil
}

// FindByID finds an inventory item by ID.
func (s *inventoryService) FindByID(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.Collection(inventoryCollection).FindOne(ctx, bson.M{"_id": itemID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding inventory item %s: %w", itemID, err)
	}
	return &item, nil
}

// List returns all inventory items.
func (s *inventoryService) List(ctx context.Context) ([]models.InventoryItem, error) {
	return s.find(ctx, bson.M{})
}

// Update applies the non-nil fields of update and returns the updated item.
func (s *inventoryService) Update(ctx context.Context, itemID string, update InventoryUpdate) (*models.InventoryItem, error) {
	item, err := s.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
		item.Name = *update.Name
	}
	if update.Category != nil {
		set["category"] = *update.Category
		item.Category = *update.Category
	}
	if update.Unit != nil {
		set["unit"] = *update.Unit
		item.Unit = *update.Unit
	}
	if update.CurrentStock != nil {
		set["current_stock"] = *update.CurrentStock
		item.CurrentStock = *update.CurrentStock
	}
	if update.MinStock != nil {
		set["min_stock"] = *update.MinStock
		item.MinStock = *update.MinStock
	}
	if update.MaxStock != nil {
		set["max_stock"] = *update.MaxStock
		item.MaxStock = *update.MaxStock
	}
	if update.UnitCost != nil {
		set["unit_cost"] = *update.UnitCost
		item.UnitCost = *update.UnitCost
	}
	if update.Supplier != nil {
		set["supplier"] = *update.Supplier
		item.Supplier = *update.Supplier
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
		item.IsActive = *update.IsActive
	}
	if len(set) == 0 {
		return item, nil
	}

	if _, err := s.db.Collection(inventoryCollection).UpdateOne(ctx, bson.M{"_id": itemID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("error updating inventory item %s: %w", itemID, err)
	}
	return item, nil
}

// Delete removes an inventory item.
// Returns mongo.ErrNoDocuments for an unknown id.
func (s *inventoryService) Delete(ctx context.Context, itemID string) error {
	result, err := s.db.Collection(inventoryCollection).DeleteOne(ctx, bson.M{"_id": itemID})
	if err != nil {
		return fmt.Errorf("error deleting inventory item %s: %w", itemID, err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListLowStock returns items at or below their minimum stock. The
// comparison is between two fields of the same document, hence $expr.
func (s *inventoryService) ListLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	filter := bson.M{"$expr": bson.M{"$lte": bson.A{"$current_stock", "$min_stock"}}}
	return s.find(ctx, filter)
}

func (s *inventoryService) find(ctx context.Context, filter bson.M) ([]models.InventoryItem, error) {
	cursor, err := s.db.Collection(inventoryCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.InventoryItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}
	return items, nil
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/utils"
)

func TestInventoryService_CRUD(t *testing.T) {
	database := utils.SetupTestDB(t, "inventory_crud_test", "inventory")
	inventoryService := NewInventoryService(database)
	ctx := context.Background()

	created, err := inventoryService.Create(ctx, models.InventoryItem{
		SKU:          "CHM-001",
		Name:         "Shampoo Mobil",
		Category:     "chemicals",
		Unit:         "liter",
		CurrentStock: 20,
		MinStock:     5,
		MaxStock:     50,
		UnitCost:     15000,
		Supplier:     "PT Kimia Bersih",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	found, err := inventoryService.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CHM-001", found.SKU)
	assert.Equal(t, 20.0, found.CurrentStock)

	items, err := inventoryService.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = inventoryService.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestInventoryService_Update(t *testing.T) {
	database := utils.SetupTestDB(t, "inventory_update_test", "inventory")
	inventoryService := NewInventoryService(database)
	ctx := context.Background()

	created, err := inventoryService.Create(ctx, models.InventoryItem{
		SKU:          "SUP-002",
		Name:         "Lap Microfiber",
		Category:     "supplies",
		Unit:         "pcs",
		CurrentStock: 30,
		MinStock:     10,
		UnitCost:     8000,
	})
	require.NoError(t, err)

	newStock := 12.0
	newCost := 8500.0
	updated, err := inventoryService.Update(ctx, created.ID, InventoryUpdate{
		CurrentStock: &newStock,
		UnitCost:     &newCost,
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, updated.CurrentStock)
	assert.Equal(t, 8500.0, updated.UnitCost)

	// Unset fields are left alone.
	found, err := inventoryService.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lap Microfiber", found.Name)
	assert.Equal(t, 10.0, found.MinStock)
	assert.Equal(t, 12.0, found.CurrentStock)

	_, err = inventoryService.Update(ctx, "missing", InventoryUpdate{CurrentStock: &newStock})
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestInventoryService_Delete(t *testing.T) {
	database := utils.SetupTestDB(t, "inventory_delete_test", "inventory")
	inventoryService := NewInventoryService(database)
	ctx := context.Background()

	created, err := inventoryService.Create(ctx, models.InventoryItem{SKU: "EQP-003", Name: "Nozzle"})
	require.NoError(t, err)

	require.NoError(t, inventoryService.Delete(ctx, created.ID))

	_, err = inventoryService.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	err = inventoryService.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestInventoryService_ListLowStock(t *testing.T) {
	database := utils.SetupTestDB(t, "inventory_lowstock_test", "inventory")
	inventoryService := NewInventoryService(database)
	ctx := context.Background()

	low, err := inventoryService.Create(ctx, models.InventoryItem{
		SKU: "CHM-004", Name: "Wax", CurrentStock: 2, MinStock: 5,
	})
	require.NoError(t, err)
	atThreshold, err := inventoryService.Create(ctx, models.InventoryItem{
		SKU: "CHM-005", Name: "Degreaser", CurrentStock: 5, MinStock: 5,
	})
	require.NoError(t, err)
	_, err = inventoryService.Create(ctx, models.InventoryItem{
		SKU: "CHM-006", Name: "Foam", CurrentStock: 20, MinStock: 5,
	})
	require.NoError(t, err)

	items, err := inventoryService.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := []string{items[0].ID, items[1].ID}
	assert.Contains(t, ids, low.ID)
	assert.Contains(t, ids, atThreshold.ID)
}

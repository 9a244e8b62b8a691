package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/db"
	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/utils"
)

func TestDashboardService_Stats(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_dashboard_stats",
		"transactions", "shifts", "users", "customers", "memberships", "inventory", "counters")
	require.NoError(t, db.EnsureIndexes(context.Background(), database))

	cfg := &config.Config{ExpiringSoonDays: 7, RegularTermDays: 3650}
	userSvc := NewUserService(database)
	shiftSvc := NewShiftService(database, cfg, userSvc)
	txSvc := NewTransactionService(database, cfg, shiftSvc, NewInvoiceSequencer(database), nil)
	customerSvc := NewCustomerService(database)
	membershipSvc := NewMembershipService(database, cfg, customerSvc)
	inventorySvc := NewInventoryService(database)
	// No Redis client: caching skipped, every call recomputes.
	svc := NewDashboardService(cfg, nil, txSvc, membershipSvc, inventorySvc)
	ctx := context.Background()

	// Two cashiers, one sale each.
	budi := createTestKasir(t, database, "Budi Santoso")
	siti := createTestKasir(t, database, "Siti Rahma")
	_, err := shiftSvc.Open(ctx, budi.ID, 0)
	require.NoError(t, err)
	_, err = shiftSvc.Open(ctx, siti.ID, 0)
	require.NoError(t, err)

	input := TransactionInput{
		Items:           []models.TransactionItem{{Name: "Cuci", Price: 35000, Quantity: 1}},
		PaymentMethod:   models.PaymentCash,
		PaymentReceived: 35000,
	}
	_, err = txSvc.Create(ctx, budi.ID, budi.FullName, input)
	require.NoError(t, err)
	input.Items[0].Price = 50000
	input.PaymentReceived = 50000
	_, err = txSvc.Create(ctx, siti.ID, siti.FullName, input)
	require.NoError(t, err)

	// One active, one expiring, one expired membership.
	now := time.Now().UTC()
	insertMembershipEnding(t, database, "c-active", now.AddDate(0, 0, 60))
	insertMembershipEnding(t, database, "c-soon", now.AddDate(0, 0, 3))
	insertMembershipEnding(t, database, "c-expired", now.AddDate(0, 0, -1))

	// One low stock item, one healthy.
	_, err = inventorySvc.Create(ctx, models.InventoryItem{
		SKU: "SHP-1", Name: "Shampoo", Unit: "liter", CurrentStock: 2, MinStock: 5, IsActive: true,
	})
	require.NoError(t, err)
	_, err = inventorySvc.Create(ctx, models.InventoryItem{
		SKU: "WAX-1", Name: "Wax", Unit: "pcs", CurrentStock: 50, MinStock: 5, IsActive: true,
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 85000.0, stats.TodayRevenue)
	assert.Equal(t, 2, stats.TodayTransactions)
	assert.Equal(t, 2, stats.ActiveMemberships)
	assert.Equal(t, 1, stats.ExpiringMemberships)
	assert.Equal(t, 1, stats.LowStockItems)

	require.Contains(t, stats.KasirPerformance, "Budi Santoso")
	require.Contains(t, stats.KasirPerformance, "Siti Rahma")
	assert.Equal(t, 1, stats.KasirPerformance["Budi Santoso"].Count)
	assert.Equal(t, 35000.0, stats.KasirPerformance["Budi Santoso"].Revenue)
	assert.Equal(t, 50000.0, stats.KasirPerformance["Siti Rahma"].Revenue)
}

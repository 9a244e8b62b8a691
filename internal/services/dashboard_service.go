package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/models"
)

// KasirPerformance aggregates one cashier's sales for the day.
type KasirPerformance struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DashboardStats is the summary shown on the owner dashboard.
type DashboardStats struct {
	TodayRevenue        float64                     `json:"today_revenue"`
	TodayTransactions   int                         `json:"today_transactions"`
	ActiveMemberships   int                         `json:"active_memberships"`
	ExpiringMemberships int                         `json:"expiring_memberships"`
	LowStockItems       int                         `json:"low_stock_items"`
	KasirPerformance    map[string]KasirPerformance `json:"kasir_performance"`
}

// IDashboardService computes dashboard summary counters.
type IDashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}

const dashboardCacheKey = "dashboard:stats"

// dashboardService implements IDashboardService. The stats are plain folds
// over today's transactions, memberships and inventory; the result is
// cached briefly in Redis since the dashboard polls.
type dashboardService struct {
	cfg                *config.Config
	rdb                *redis.Client
	transactionService ITransactionService
	membershipService  IMembershipService
	inventoryService   IInventoryService
}

// NewDashboardService creates a new DashboardService. rdb may be nil, in
// which case caching is skipped.
func NewDashboardService(cfg *config.Config, rdb *redis.Client, transactionService ITransactionService, membershipService IMembershipService, inventoryService IInventoryService) IDashboardService {
	return &dashboardService{
		cfg:                cfg,
		rdb:                rdb,
		transactionService: transactionService,
		membershipService:  membershipService,
		inventoryService:   inventoryService,
	}
}

// Stats returns the dashboard summary, from cache when fresh.
func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var stats DashboardStats
			if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
				return &stats, nil
			}
			// Unparseable cache entry; fall through and recompute.
		} else if err != redis.Nil {
			log.Printf("Dashboard cache read failed: %v", err)
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, jsonErr := json.Marshal(stats); jsonErr == nil {
			if setErr := s.rdb.Set(ctx, dashboardCacheKey, payload, s.cfg.DashboardCacheTTL).Err(); setErr != nil {
				log.Printf("Dashboard cache write failed: %v", setErr)
			}
		}
	}

	return stats, nil
}

func (s *dashboardService) compute(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		KasirPerformance: map[string]KasirPerformance{},
	}

	transactions, err := s.transactionService.ListToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's transactions: %w", err)
	}
	stats.TodayTransactions = len(transactions)
	for _, t := range transactions {
		stats.TodayRevenue += t.Total
		perf := stats.KasirPerformance[t.KasirName]
		perf.Count++
		perf.Revenue += t.Total
		stats.KasirPerformance[t.KasirName] = perf
	}

	memberships, err := s.membershipService.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}
	now := time.Now().UTC()
	for _, m := range memberships {
		if m.EndDate.Before(now) {
			continue
		}
		stats.ActiveMemberships++
		if m.Status == models.MembershipExpiringSoon {
			stats.ExpiringMemberships++
		}
	}

	lowStock, err := s.inventoryService.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock items: %w", err)
	}
	stats.LowStockItems = len(lowStock)

	return stats, nil
}

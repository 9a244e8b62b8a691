package tasks

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/services"
	"github.com/Starlight373/Car-wash/internal/utils"
)

func newAggregateTask(t *testing.T, customerID string, total float64, invoiceNumber string) *asynq.Task {
	payload, err := json.Marshal(CustomerAggregatePayload{
		CustomerID:    customerID,
		Total:         total,
		InvoiceNumber: invoiceNumber,
	})
	require.NoError(t, err)
	return asynq.NewTask(TypeCustomerAggregate, payload)
}

func TestHandleCustomerAggregateTask_Idempotent(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_tasks_aggregate", "customers", "aggregate_markers")
	cfg := &config.Config{}
	customerSvc := services.NewCustomerService(database)
	membershipSvc := services.NewMembershipService(database, cfg, customerSvc)
	inventorySvc := services.NewInventoryService(database)
	processor := NewTaskProcessor(cfg, database, nil, customerSvc, membershipSvc, inventorySvc, nil)
	ctx := context.Background()

	customer, err := customerSvc.Create(ctx, "Dewi", "0811", "", "", "")
	require.NoError(t, err)

	task := newAggregateTask(t, customer.ID, 35000, "INV-20260315-0001")

	// First delivery applies the increment.
	require.NoError(t, processor.HandleCustomerAggregateTask(ctx, task))
	updated, err := customerSvc.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.TotalVisits)
	assert.Equal(t, 35000.0, updated.TotalSpending)

	// A redelivery of the same invoice is a no-op.
	require.NoError(t, processor.HandleCustomerAggregateTask(ctx, task))
	updated, err = customerSvc.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.TotalVisits)
	assert.Equal(t, 35000.0, updated.TotalSpending)

	// A different invoice for the same customer still applies.
	other := newAggregateTask(t, customer.ID, 50000, "INV-20260315-0002")
	require.NoError(t, processor.HandleCustomerAggregateTask(ctx, other))
	updated, err = customerSvc.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.TotalVisits)
	assert.Equal(t, 85000.0, updated.TotalSpending)
}

func TestHandleCustomerAggregateTask_UnknownCustomerRetries(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_tasks_aggregate_unknown", "customers", "aggregate_markers")
	cfg := &config.Config{}
	customerSvc := services.NewCustomerService(database)
	processor := NewTaskProcessor(cfg, database, nil, customerSvc,
		services.NewMembershipService(database, cfg, customerSvc),
		services.NewInventoryService(database), nil)
	ctx := context.Background()

	task := newAggregateTask(t, "no-such-customer", 1000, "INV-20260315-0009")
	err := processor.HandleCustomerAggregateTask(ctx, task)
	require.Error(t, err)

	// The marker was rolled back so a later retry is not a silent no-op.
	count, err2 := database.Collection("aggregate_markers").CountDocuments(ctx, bson.M{"_id": "INV-20260315-0009"})
	require.NoError(t, err2)
	assert.Zero(t, count)
}

func TestHandleCustomerAggregateTask_BadPayloadSkipsRetry(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_tasks_aggregate_bad", "customers", "aggregate_markers")
	cfg := &config.Config{}
	customerSvc := services.NewCustomerService(database)
	processor := NewTaskProcessor(cfg, database, nil, customerSvc,
		services.NewMembershipService(database, cfg, customerSvc),
		services.NewInventoryService(database), nil)

	task := asynq.NewTask(TypeCustomerAggregate, []byte("not json"))
	err := processor.HandleCustomerAggregateTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPeriodicTaskID_OnePerDay(t *testing.T) {
	morning := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 15, 22, 30, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)

	// Two seeds on the same day collapse onto one id; the next day's
	// occurrence gets a fresh one.
	assert.Equal(t, PeriodicTaskID(TypeMembershipExpiry, morning), PeriodicTaskID(TypeMembershipExpiry, evening))
	assert.NotEqual(t, PeriodicTaskID(TypeMembershipExpiry, morning), PeriodicTaskID(TypeMembershipExpiry, nextDay))
	assert.NotEqual(t, PeriodicTaskID(TypeMembershipExpiry, morning), PeriodicTaskID(TypeLowStockReport, morning))

	assert.Equal(t, "pos:membership:notify_expiring:20260315", PeriodicTaskID(TypeMembershipExpiry, morning))
}

func TestPeriodicSeed_DuplicateIDConflicts(t *testing.T) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		t.Skipf("Redis not reachable at %s: %v", redisAddr, err)
	}
	defer rdb.Close()

	client := NewClient(rdb)
	defer client.Close()

	// Unique type per run so earlier runs' scheduled tasks cannot collide.
	taskType := "pos:test:seed-" + uuid.NewString()
	runAt := time.Now().Add(time.Minute)
	id := PeriodicTaskID(taskType, runAt)

	info, err := client.Enqueue(asynq.NewTask(taskType, nil), asynq.ProcessIn(time.Minute), asynq.Queue("low"), asynq.TaskID(id))
	require.NoError(t, err)
	defer func() {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})
		defer inspector.Close()
		_ = inspector.DeleteTask("low", info.ID)
	}()

	// A second worker seeding the same day is rejected, not duplicated.
	_, err = client.Enqueue(asynq.NewTask(taskType, nil), asynq.ProcessIn(time.Minute), asynq.Queue("low"), asynq.TaskID(id))
	assert.ErrorIs(t, err, asynq.ErrTaskIDConflict)
}

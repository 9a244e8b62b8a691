package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/email"
	"github.com/Starlight373/Car-wash/internal/services"
)

// Task types.
const (
	TypeCustomerAggregate = "pos:customer:aggregate"
	TypeMembershipExpiry  = "pos:membership:notify_expiring"
	TypeLowStockReport    = "pos:inventory:low_stock_report"
)

// aggregateMarkersCollection holds one marker document per applied
// aggregate retry, keyed by invoice number, so a task that is delivered
// more than once mutates the customer exactly once.
const aggregateMarkersCollection = "aggregate_markers"

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// CustomerAggregatePayload carries a customer counter increment that
// failed inline after its transaction was already persisted.
type CustomerAggregatePayload struct {
	CustomerID    string  `json:"customer_id"`
	Total         float64 `json:"total"`
	InvoiceNumber string  `json:"invoice_number"`
}

// Enqueuer wraps an asynq client behind the narrow interface the
// transaction service depends on.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueCustomerAggregate queues an idempotent retry of a customer
// aggregate increment on the critical queue.
func (e *Enqueuer) EnqueueCustomerAggregate(ctx context.Context, customerID string, total float64, invoiceNumber string) error {
	payload, err := json.Marshal(CustomerAggregatePayload{
		CustomerID:    customerID,
		Total:         total,
		InvoiceNumber: invoiceNumber,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal customer aggregate payload: %w", err)
	}
	task := asynq.NewTask(TypeCustomerAggregate, payload)
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue("critical"), asynq.MaxRetry(10))
	if err != nil {
		return fmt.Errorf("failed to enqueue customer aggregate task: %w", err)
	}
	return nil
}

// NewMembershipExpiryTask builds the periodic expiring-membership scan task.
func NewMembershipExpiryTask() *asynq.Task {
	return asynq.NewTask(TypeMembershipExpiry, nil)
}

// NewLowStockReportTask builds the periodic low-stock report task.
func NewLowStockReportTask() *asynq.Task {
	return asynq.NewTask(TypeLowStockReport, nil)
}

// PeriodicTaskID returns the stable id of a periodic task occurrence:
// one per task type per calendar day. Enqueueing a second occurrence
// for the same day fails with asynq.ErrTaskIDConflict, which keeps a
// restarted worker from seeding a parallel daily chain.
func PeriodicTaskID(taskType string, runAt time.Time) string {
	return taskType + ":" + runAt.UTC().Format("20060102")
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg               *config.Config
	db                *mongo.Database
	emailSender       email.Sender
	customerService   services.ICustomerService
	membershipService services.IMembershipService
	inventoryService  services.IInventoryService
	taskClient        *asynq.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	db *mongo.Database,
	emailSender email.Sender,
	customerService services.ICustomerService,
	membershipService services.IMembershipService,
	inventoryService services.IInventoryService,
	taskClient *asynq.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:               cfg,
		db:                db,
		emailSender:       emailSender,
		customerService:   customerService,
		membershipService: membershipService,
		inventoryService:  inventoryService,
		taskClient:        taskClient,
	}
}

// SetupServer configures and returns an Asynq server instance with the
// POS task handlers registered. Returns nil in API-only mode.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	if !isBgWorker {
		fmt.Println("Running in API mode, no task server started.")
		return nil, nil
	}

	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v\n", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCustomerAggregate, processor.HandleCustomerAggregateTask)
	mux.HandleFunc(TypeMembershipExpiry, processor.HandleMembershipExpiryTask)
	mux.HandleFunc(TypeLowStockReport, processor.HandleLowStockReportTask)
	fmt.Println("Registered background task handlers.")

	return srv, mux
}

// --- Task Handlers ---

// HandleCustomerAggregateTask applies a customer counter increment that
// failed inline. The marker insert makes the apply idempotent across
// redeliveries: a duplicate key on the invoice number means a previous
// delivery already applied it.
func (p *TaskProcessor) HandleCustomerAggregateTask(ctx context.Context, t *asynq.Task) error {
	var payload CustomerAggregatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal customer aggregate payload: %v: %w", err, asynq.SkipRetry)
	}

	marker := bson.M{
		"_id":         payload.InvoiceNumber,
		"customer_id": payload.CustomerID,
		"applied_at":  time.Now().UTC(),
	}
	if _, err := p.db.Collection(aggregateMarkersCollection).InsertOne(ctx, marker); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Printf("Customer aggregate for invoice %s already applied, skipping.", payload.InvoiceNumber)
			return nil
		}
		return fmt.Errorf("failed to insert aggregate marker for invoice %s: %w", payload.InvoiceNumber, err)
	}

	if err := p.customerService.ApplyAggregate(ctx, payload.CustomerID, payload.Total); err != nil {
		// Remove the marker so the retry is not a no-op.
		_, _ = p.db.Collection(aggregateMarkersCollection).DeleteOne(ctx, bson.M{"_id": payload.InvoiceNumber})
		return fmt.Errorf("failed to apply customer aggregate for invoice %s: %w", payload.InvoiceNumber, err)
	}

	log.Printf("Applied queued customer aggregate for invoice %s (customer %s).", payload.InvoiceNumber, payload.CustomerID)
	return nil
}

// HandleMembershipExpiryTask emails the owner a summary of memberships
// entering the expiring-soon window, then re-enqueues itself for the next
// day's scan.
func (p *TaskProcessor) HandleMembershipExpiryTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting expiring membership scan...")

	expiring, err := p.membershipService.ListExpiringSoon(ctx)
	if err != nil {
		return err // Retry DB error
	}

	if len(expiring) == 0 {
		log.Println("No memberships expiring soon.")
		return p.rescheduleDaily(ctx, TypeMembershipExpiry)
	}
	if p.cfg.OwnerEmail == "" {
		log.Printf("Found %d expiring memberships but OWNER_EMAIL is not set; skipping notification.", len(expiring))
		return p.rescheduleDaily(ctx, TypeMembershipExpiry)
	}

	body := fmt.Sprintf("%d membership(s) expire within %d days:\n\n", len(expiring), p.cfg.ExpiringSoonDays)
	for _, m := range expiring {
		body += fmt.Sprintf("- %s (%s), ends %s\n", m.CustomerName, m.MembershipType, m.EndDate.Format("2006-01-02"))
	}

	subject := fmt.Sprintf("[%s] Memberships expiring soon", p.cfg.AppName)
	if err := p.emailSender.Send(ctx, []string{p.cfg.OwnerEmail}, subject, []byte(body)); err != nil {
		return fmt.Errorf("failed to send expiring membership summary: %w", err)
	}

	log.Printf("Expiring membership scan finished, notified about %d memberships.", len(expiring))
	return p.rescheduleDaily(ctx, TypeMembershipExpiry)
}

// HandleLowStockReportTask emails the owner a report of inventory items at
// or below their minimum stock, then re-enqueues itself for the next day.
func (p *TaskProcessor) HandleLowStockReportTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting low stock report...")

	items, err := p.inventoryService.ListLowStock(ctx)
	if err != nil {
		return err // Retry DB error
	}

	if len(items) == 0 {
		log.Println("No low stock items.")
		return p.rescheduleDaily(ctx, TypeLowStockReport)
	}
	if p.cfg.OwnerEmail == "" {
		log.Printf("Found %d low stock items but OWNER_EMAIL is not set; skipping report.", len(items))
		return p.rescheduleDaily(ctx, TypeLowStockReport)
	}

	body := fmt.Sprintf("%d inventory item(s) at or below minimum stock:\n\n", len(items))
	for _, item := range items {
		body += fmt.Sprintf("- %s (%s): %.2f %s on hand, minimum %.2f\n",
			item.Name, item.SKU, item.CurrentStock, item.Unit, item.MinStock)
	}

	subject := fmt.Sprintf("[%s] Low stock report", p.cfg.AppName)
	if err := p.emailSender.Send(ctx, []string{p.cfg.OwnerEmail}, subject, []byte(body)); err != nil {
		return fmt.Errorf("failed to send low stock report: %w", err)
	}

	log.Printf("Low stock report finished, %d items reported.", len(items))
	return p.rescheduleDaily(ctx, TypeLowStockReport)
}

// rescheduleDaily re-enqueues a periodic scan task to run again in 24h.
// The bg run mode seeds the first occurrence at startup.
func (p *TaskProcessor) rescheduleDaily(ctx context.Context, taskType string) error {
	if p.taskClient == nil {
		return nil
	}
	runAt := time.Now().Add(24 * time.Hour)
	taskInfo, err := p.taskClient.EnqueueContext(ctx, asynq.NewTask(taskType, nil),
		asynq.ProcessIn(24*time.Hour), asynq.Queue("low"), asynq.TaskID(PeriodicTaskID(taskType, runAt)))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Printf("Periodic task %s already scheduled for %s.", taskType, runAt.UTC().Format("2006-01-02"))
			return nil
		}
		log.Printf("ERROR failed to re-enqueue periodic task %s: %v", taskType, err)
		return err
	}
	log.Printf("Re-enqueued periodic task %s as %s to run in 24h.", taskType, taskInfo.ID)
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/models"
)

// ErrNoOpenShift is returned when a sale is attempted without an open shift.
var ErrNoOpenShift = errors.New("no open shift, open a shift first")

// ErrInsufficientPayment is returned when payment received is less than the total.
var ErrInsufficientPayment = errors.New("payment received is less than total")

// ErrNoItems is returned for a sale with no line items.
var ErrNoItems = errors.New("transaction must have at least one item")

// AggregateEnqueuer hands a customer aggregate increment to the background
// queue when the inline update fails after the transaction was persisted.
// Implemented by the tasks package; kept narrow to avoid an import cycle.
type AggregateEnqueuer interface {
	EnqueueCustomerAggregate(ctx context.Context, customerID string, total float64, invoiceNumber string) error
}

// TransactionInput carries the cashier's sale request.
type TransactionInput struct {
	CustomerID      string
	Items           []models.TransactionItem
	PaymentMethod   models.PaymentMethod
	PaymentReceived float64
	Notes           string
}

// ITransactionService defines the interface for recording and listing sales.
type ITransactionService interface {
	Create(ctx context.Context, kasirID, kasirName string, input TransactionInput) (*models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	ListToday(ctx context.Context) ([]models.Transaction, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Transaction, error)
}

const transactionsCollection = "transactions"

// transactionService implements ITransactionService.
type transactionService struct {
	db           *mongo.Database
	cfg          *config.Config
	shiftService IShiftService
	sequencer    IInvoiceSequencer
	enqueuer     AggregateEnqueuer // may be nil (no background queue wired)
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(db *mongo.Database, cfg *config.Config, shiftService IShiftService, sequencer IInvoiceSequencer, enqueuer AggregateEnqueuer) ITransactionService {
	return &transactionService{
		db:           db,
		cfg:          cfg,
		shiftService: shiftService,
		sequencer:    sequencer,
		enqueuer:     enqueuer,
	}
}

// Create validates and records one sale:
//  1. the cashier must have an open shift;
//  2. subtotal = sum(price*quantity), total = subtotal (no tax/discount);
//  3. change = received - total, negative rejects the sale unpersisted;
//  4. a named customer is resolved to a display name, a missing customer
//     record is tolerated;
//  5. the invoice number is allocated for today (UTC);
//  6. the transaction is inserted;
//  7. the customer's visit/spending counters are incremented atomically.
//
// There is no multi-document transaction around 6 and 7: a failed counter
// update after a successful insert is handed to the background queue and
// retried idempotently there.
func (s *transactionService) Create(ctx context.Context, kasirID, kasirName string, input TransactionInput) (*models.Transaction, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("unknown payment method %q", input.PaymentMethod)
	}

	shift, err := s.shiftService.Current(ctx, kasirID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up open shift for kasir %s: %w", kasirID, err)
	}
	if shift == nil {
		return nil, ErrNoOpenShift
	}

	subtotal := 0.0
	for _, item := range input.Items {
		subtotal += item.Price * item.Quantity
	}
	total := subtotal
	change := input.PaymentReceived - total
	if change < 0 {
		return nil, ErrInsufficientPayment
	}

	customerName := ""
	if input.CustomerID != "" {
		var customer models.Customer
		err := s.db.Collection(customersCollection).FindOne(ctx, bson.M{"_id": input.CustomerID}).Decode(&customer)
		if err == nil {
			customerName = customer.Name
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to resolve customer %s: %w", input.CustomerID, err)
		}
	}

	now := time.Now().UTC()
	invoiceNumber, err := s.sequencer.Next(ctx, now)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		Base:            models.NewBase(),
		InvoiceNumber:   invoiceNumber,
		KasirID:         kasirID,
		KasirName:       kasirName,
		CustomerID:      input.CustomerID,
		CustomerName:    customerName,
		ShiftID:         shift.ID,
		Items:           input.Items,
		Subtotal:        subtotal,
		Total:           total,
		PaymentMethod:   input.PaymentMethod,
		PaymentReceived: input.PaymentReceived,
		ChangeAmount:    change,
		Notes:           input.Notes,
		CreatedAt:       now,
	}

	if _, err := s.db.Collection(transactionsCollection).InsertOne(ctx, transaction); err != nil {
		return nil, fmt.Errorf("error inserting transaction %s: %w", invoiceNumber, err)
	}

	if input.CustomerID != "" {
		if err := s.incrementCustomerAggregates(ctx, input.CustomerID, total); err != nil {
			// The sale is already durable; don't fail it. Hand the counter
			// update to the background queue for an idempotent retry.
			log.Printf("Inline customer aggregate update failed for %s (invoice %s): %v", input.CustomerID, invoiceNumber, err)
			if s.enqueuer != nil {
				if enqErr := s.enqueuer.EnqueueCustomerAggregate(ctx, input.CustomerID, total, invoiceNumber); enqErr != nil {
					log.Printf("Failed to enqueue customer aggregate retry for invoice %s: %v", invoiceNumber, enqErr)
				}
			}
		}
	}

	return transaction, nil
}

// incrementCustomerAggregates bumps the customer's counters with a single
// atomic $inc (never read-modify-write).
func (s *transactionService) incrementCustomerAggregates(ctx context.Context, customerID string, total float64) error {
	_, err := s.db.Collection(customersCollection).UpdateOne(ctx,
		bson.M{"_id": customerID},
		bson.M{"$inc": bson.M{"total_visits": 1, "total_spending": total}})
	return err
}

// List returns transactions most recent first, capped by configuration.
func (s *transactionService) List(ctx context.Context) ([]models.Transaction, error) {
	limit := s.cfg.TransactionListLimit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, bson.M{}, opts)
}

// ListToday returns transactions created since UTC midnight, newest first.
func (s *transactionService) ListToday(ctx context.Context) ([]models.Transaction, error) {
	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, bson.M{"created_at": bson.M{"$gte": todayStart}}, opts)
}

// ListByCustomer returns a customer's purchase history, newest first.
func (s *transactionService) ListByCustomer(ctx context.Context, customerID string) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, bson.M{"customer_id": customerID}, opts)
}

func (s *transactionService) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Transaction, error) {
	cursor, err := s.db.Collection(transactionsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []models.Transaction
	if err = cursor.All(ctx, &transactions); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return transactions, nil
}

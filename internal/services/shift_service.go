package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/models"
)

// ErrShiftAlreadyOpen is returned when a cashier already has an open shift.
var ErrShiftAlreadyOpen = errors.New("shift already open for this kasir")

// ErrShiftClosed is returned when closing a shift that is already closed.
var ErrShiftClosed = errors.New("shift already closed")

// ErrNegativeBalance is returned for a negative opening balance.
var ErrNegativeBalance = errors.New("opening balance must not be negative")

// IShiftService defines the interface for shift cash-reconciliation
// operations.
type IShiftService interface {
	Open(ctx context.Context, kasirID string, openingBalance float64) (*models.Shift, error)
	Close(ctx context.Context, shiftID string, closingBalance float64, notes string) (*models.Shift, error)
	Current(ctx context.Context, kasirID string) (*models.Shift, error)
	List(ctx context.Context) ([]models.Shift, error)
}

const (
	shiftsCollection = "shifts"
	// transactionsCollection is defined in transaction_service
)

// shiftService implements IShiftService.
type shiftService struct {
	db          *mongo.Database
	cfg         *config.Config
	userService IUserService // Resolves kasir display names
}

// NewShiftService creates a new ShiftService.
func NewShiftService(db *mongo.Database, cfg *config.Config, userService IUserService) IShiftService {
	return &shiftService{db: db, cfg: cfg, userService: userService}
}

// Open starts a new shift for the cashier with the given opening float.
// The partial unique index on (kasir_id, status=open) makes the insert an
// atomic conditional create: the losing side of a concurrent double-open
// gets a duplicate key error, mapped to ErrShiftAlreadyOpen.
func (s *shiftService) Open(ctx context.Context, kasirID string, openingBalance float64) (*models.Shift, error) {
	if openingBalance < 0 {
		return nil, ErrNegativeBalance
	}

	kasir, err := s.userService.FindByID(ctx, kasirID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to resolve kasir %s: %w", kasirID, err)
	}

	shift := &models.Shift{
		Base:           models.NewBase(),
		KasirID:        kasirID,
		KasirName:      kasir.FullName,
		OpeningBalance: openingBalance,
		OpenedAt:       time.Now().UTC(),
		Status:         models.ShiftStatusOpen,
	}

	if _, err := s.db.Collection(shiftsCollection).InsertOne(ctx, shift); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrShiftAlreadyOpen
		}
		return nil, fmt.Errorf("error inserting shift for kasir %s: %w", kasirID, err)
	}

	return shift, nil
}

// Close reconciles and closes a shift. Expected balance is the opening
// float plus the sum of the shift's cash transaction totals; variance is
// the counted closing balance minus that (signed: negative = shortfall).
//
// The closing write is filtered on status=open so that of two concurrent
// closes exactly one wins; the loser sees ErrShiftClosed.
func (s *shiftService) Close(ctx context.Context, shiftID string, closingBalance float64, notes string) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.Collection(shiftsCollection).FindOne(ctx, bson.M{"_id": shiftID}).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding shift %s: %w", shiftID, err)
	}
	if shift.Status == models.ShiftStatusClosed {
		return nil, ErrShiftClosed
	}

	cashTotal, err := s.cashTotalForShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	expected := shift.OpeningBalance + cashTotal
	variance := closingBalance - expected
	now := time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"closing_balance":  closingBalance,
		"expected_balance": expected,
		"variance":         variance,
		"closed_at":        now,
		"status":           models.ShiftStatusClosed,
		"notes":            notes,
	}}
	result, err := s.db.Collection(shiftsCollection).UpdateOne(ctx,
		bson.M{"_id": shiftID, "status": models.ShiftStatusOpen}, update)
	if err != nil {
		return nil, fmt.Errorf("error closing shift %s: %w", shiftID, err)
	}
	if result.MatchedCount == 0 {
		// Lost the race to a concurrent close.
		return nil, ErrShiftClosed
	}

	shift.ClosingBalance = &closingBalance
	shift.ExpectedBalance = &expected
	shift.Variance = &variance
	shift.ClosedAt = &now
	shift.Status = models.ShiftStatusClosed
	shift.Notes = notes
	return &shift, nil
}

// cashTotalForShift sums the totals of the shift's cash transactions.
func (s *shiftService) cashTotalForShift(ctx context.Context, shiftID string) (float64, error) {
	cursor, err := s.db.Collection(transactionsCollection).Find(ctx, bson.M{
		"shift_id":       shiftID,
		"payment_method": models.PaymentCash,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query transactions for shift %s: %w", shiftID, err)
	}
	defer cursor.Close(ctx)

	var transactions []models.Transaction
	if err = cursor.All(ctx, &transactions); err != nil {
		return 0, fmt.Errorf("failed to decode transactions for shift %s: %w", shiftID, err)
	}

	total := 0.0
	for _, t := range transactions {
		total += t.Total
	}
	return total, nil
}

// Current returns the cashier's open shift, or nil if there is none.
// No open shift is an ordinary answer here, not an error.
func (s *shiftService) Current(ctx context.Context, kasirID string) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.Collection(shiftsCollection).FindOne(ctx, bson.M{
		"kasir_id": kasirID,
		"status":   models.ShiftStatusOpen,
	}).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding current shift for kasir %s: %w", kasirID, err)
	}
	return &shift, nil
}

// List returns shifts most recent first, capped by configuration.
func (s *shiftService) List(ctx context.Context) ([]models.Shift, error) {
	limit := s.cfg.ShiftListLimit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "opened_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.db.Collection(shiftsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer cursor.Close(ctx)

	var shifts []models.Shift
	if err = cursor.All(ctx, &shifts); err != nil {
		return nil, fmt.Errorf("failed to decode shifts: %w", err)
	}
	return shifts, nil
}

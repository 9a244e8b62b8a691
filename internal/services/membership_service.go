package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/models"
)

// IMembershipService defines the interface for membership operations.
type IMembershipService interface {
	Create(ctx context.Context, customerID string, membershipType models.MembershipType, price float64, notes string) (*models.Membership, error)
	List(ctx context.Context) ([]models.Membership, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Membership, error)
	ListExpiringSoon(ctx context.Context) ([]models.Membership, error)
}

const membershipsCollection = "memberships"

// membershipService implements IMembershipService.
type membershipService struct {
	db              *mongo.Database
	cfg             *config.Config
	customerService ICustomerService
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(db *mongo.Database, cfg *config.Config, customerService ICustomerService) IMembershipService {
	return &membershipService{db: db, cfg: cfg, customerService: customerService}
}

// DeriveStatus computes a membership status as a pure function of the end
// date and the current time. expired if endDate < now; expiring_soon if it
// ends within expiringSoonDays; otherwise active. Status is derived on
// every read and never persisted, so it cannot drift.
func DeriveStatus(endDate, now time.Time, expiringSoonDays int) models.MembershipStatus {
	if endDate.Before(now) {
		return models.MembershipExpired
	}
	if endDate.Sub(now) <= time.Duration(expiringSoonDays)*24*time.Hour {
		return models.MembershipExpiringSoon
	}
	return models.MembershipActive
}

// Create purchases a membership for an existing customer. The end date
// follows from the membership type's term; regular memberships get the
// long configured term instead of a natural expiry.
func (s *membershipService) Create(ctx context.Context, customerID string, membershipType models.MembershipType, price float64, notes string) (*models.Membership, error) {
	customer, err := s.customerService.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, err
	}

	days := membershipType.TermDays()
	if days == 0 {
		if membershipType != models.MembershipRegular {
			return nil, fmt.Errorf("unknown membership type %q", membershipType)
		}
		days = s.cfg.RegularTermDays
	}

	now := time.Now().UTC()
	membership := &models.Membership{
		Base:           models.NewBase(),
		CustomerID:     customerID,
		CustomerName:   customer.Name,
		MembershipType: membershipType,
		StartDate:      now,
		EndDate:        now.AddDate(0, 0, days),
		Price:          price,
		Notes:          notes,
		CreatedAt:      now,
	}

	if _, err := s.db.Collection(membershipsCollection).InsertOne(ctx, membership); err != nil {
		return nil, fmt.Errorf("error inserting membership for customer %s: %w", customerID, err)
	}

	membership.Status = DeriveStatus(membership.EndDate, now, s.cfg.ExpiringSoonDays)
	return membership, nil
}

// List returns all memberships with status derived against the current time.
func (s *membershipService) List(ctx context.Context) ([]models.Membership, error) {
	return s.find(ctx, bson.M{})
}

// ListByCustomer returns a customer's memberships with derived status.
func (s *membershipService) ListByCustomer(ctx context.Context, customerID string) ([]models.Membership, error) {
	return s.find(ctx, bson.M{"customer_id": customerID})
}

// ListExpiringSoon returns unexpired memberships entering the
// expiring-soon window. Used by the background notification scan.
func (s *membershipService) ListExpiringSoon(ctx context.Context) ([]models.Membership, error) {
	now := time.Now().UTC()
	window := now.AddDate(0, 0, s.cfg.ExpiringSoonDays)
	return s.find(ctx, bson.M{"end_date": bson.M{"$gte": now, "$lte": window}})
}

func (s *membershipService) find(ctx context.Context, filter bson.M) ([]models.Membership, error) {
	cursor, err := s.db.Collection(membershipsCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer cursor.Close(ctx)

	var memberships []models.Membership
	if err = cursor.All(ctx, &memberships); err != nil {
		return nil, fmt.Errorf("failed to decode memberships: %w", err)
	}

	now := time.Now().UTC()
	for i := range memberships {
		memberships[i].Status = DeriveStatus(memberships[i].EndDate, now, s.cfg.ExpiringSoonDays)
	}
	return memberships, nil
}

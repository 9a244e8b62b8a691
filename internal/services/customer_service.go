package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/models"
)

// CustomerUpdate carries optional field updates; nil fields are left untouched.
type CustomerUpdate struct {
	Name          *string
	Phone         *string
	Email         *string
	VehicleNumber *string
	VehicleType   *string
}

// ICustomerService defines the interface for customer record operations.
type ICustomerService interface {
	Create(ctx context.Context, name, phone, email, vehicleNumber, vehicleType string) (*models.Customer, error)
	FindByID(ctx context.Context, customerID string) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customerID string, update CustomerUpdate) (*models.Customer, error)
	ApplyAggregate(ctx context.Context, customerID string, total float64) error
}

const customersCollection = "customers"

// customerService implements ICustomerService.
type customerService struct {
	db *mongo.Database
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(db *mongo.Database) ICustomerService {
	return &customerService{db: db}
}

// Create registers a new customer with zeroed visit/spending counters.
func (s *customerService) Create(ctx context.Context, name, phone, email, vehicleNumber, vehicleType string) (*models.Customer, error) {
	customer := &models.Customer{
		Base:          models.NewBase(),
		Name:          name,
		Phone:         phone,
		Email:         email,
		VehicleNumber: vehicleNumber,
		VehicleType:   vehicleType,
		JoinDate:      time.Now().UTC(),
	}
	if _, err := s.db.Collection(customersCollection).InsertOne(ctx, customer); err != nil {
		return nil, fmt.Errorf("error inserting customer %s: %w", name, err)
	}
	return customer, nil
}

// FindByID finds a customer by ID.
// Returns nil and mongo.ErrNoDocuments if not found.
func (s *customerService) FindByID(ctx context.Context, customerID string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Collection(customersCollection).FindOne(ctx, bson.M{"_id": customerID}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding customer %s: %w", customerID, err)
	}
	return &customer, nil
}

// FindByPhone finds a customer by phone number (public membership check).
func (s *customerService) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Collection(customersCollection).FindOne(ctx, bson.M{"phone": phone}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding customer by phone %s: %w", phone, err)
	}
	return &customer, nil
}

// List returns all customers.
func (s *customerService) List(ctx context.Context) ([]models.Customer, error) {
	cursor, err := s.db.Collection(customersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err = cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, nil
}

// Update applies the non-nil fields of update to the customer and returns
// the updated record. The aggregate counters are not updatable here.
func (s *customerService) Update(ctx context.Context, customerID string, update CustomerUpdate) (*models.Customer, error) {
	customer, err := s.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
		customer.Name = *update.Name
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
		customer.Phone = *update.Phone
	}
	if update.Email != nil {
		set["email"] = *update.Email
		customer.Email = *update.Email
	}
	if update.VehicleNumber != nil {
		set["vehicle_number"] = *update.VehicleNumber
		customer.VehicleNumber = *update.VehicleNumber
	}
	if update.VehicleType != nil {
		set["vehicle_type"] = *update.VehicleType
		customer.VehicleType = *update.VehicleType
	}
	if len(set) == 0 {
		return customer, nil
	}

	if _, err := s.db.Collection(customersCollection).UpdateOne(ctx, bson.M{"_id": customerID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("error updating customer %s: %w", customerID, err)
	}
	return customer, nil
}

// ApplyAggregate bumps the customer's visit/spending counters with a
// single atomic $inc. Used by the background retry task.
func (s *customerService) ApplyAggregate(ctx context.Context, customerID string, total float64) error {
	result, err := s.db.Collection(customersCollection).UpdateOne(ctx,
		bson.M{"_id": customerID},
		bson.M{"$inc": bson.M{"total_visits": 1, "total_spending": total}})
	if err != nil {
		return fmt.Errorf("error incrementing aggregates for customer %s: %w", customerID, err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

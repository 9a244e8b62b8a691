package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Starlight373/Car-wash/internal/auth"
	"github.com/Starlight373/Car-wash/internal/db"
	"github.com/Starlight373/Car-wash/internal/models"
)

// ErrUsernameExists is returned when an attempt is made to register a username that already exists.
var ErrUsernameExists = errors.New("username already exists")

// ErrInvalidCredentials is returned for a failed login (unknown user, bad
// password, or deactivated account). Deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountDeactivated is returned when a deactivated account tries to log in.
var ErrAccountDeactivated = errors.New("account is deactivated")

// IUserService defines the interface for staff account operations.
// This allows for easier mocking in tests.
type IUserService interface {
	Register(ctx context.Context, username, password, fullName, email string, role models.UserRole, phone string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db *mongo.Database
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database) IUserService {
	return &userService{db: db}
}

// Register creates a new staff account. Username uniqueness is enforced by
// the unique index on username; a duplicate insert maps to ErrUsernameExists.
func (s *userService) Register(ctx context.Context, username, password, fullName, email string, role models.UserRole, phone string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
	}

	user := &models.User{
		Base:         models.NewBase(),
		Username:     username,
		FullName:     fullName,
		Email:        email,
		Role:         role,
		Phone:        phone,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	// Retry only regenerates the _id on the freak chance of a UUID clash;
	// a username clash is mapped inside the operation so it fails fast
	// instead of burning the retry budget.
	operation := func() error {
		user.GenID()
		_, insertErr := s.db.Collection(usersCollection).InsertOne(ctx, user)
		if mongo.IsDuplicateKeyError(insertErr) && strings.Contains(insertErr.Error(), "username") {
			return ErrUsernameExists
		}
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("error inserting user %s: %w", username, err)
	}

	return user, nil
}

// Authenticate verifies a username/password pair and returns the account.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user %s: %w", username, err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	return &user, nil
}

// FindByID finds a user by their ID.
// Returns nil and mongo.ErrNoDocuments if not found.
func (s *userService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID, err)
	}
	return &user, nil
}

// List returns all staff accounts, newest first.
func (s *userService) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

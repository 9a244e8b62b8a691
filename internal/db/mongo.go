package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the primary node
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		// Disconnect if ping fails
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	fmt.Println("Successfully connected to MongoDB!")

	return client, db, nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	fmt.Println("MongoDB connection closed.")
	return nil
}

// EnsureIndexes creates the indexes the application relies on for
// correctness. It must run once at startup before serving requests.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// At most one open shift per cashier: a partial unique index turns the
	// original check-then-insert into an atomic conditional insert.
	_, err := db.Collection("shifts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "kasir_id", Value: 1}},
		Options: options.Index().
			SetName("one_open_shift_per_kasir").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": "open"}),
	})
	if err != nil {
		return fmt.Errorf("failed to create open-shift index: %w", err)
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("unique_username").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}

	_, err = db.Collection("transactions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "invoice_number", Value: 1}},
		Options: options.Index().SetName("unique_invoice_number").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create invoice number index: %w", err)
	}

	// Shift close reads every transaction of the shift; keep that scan indexed.
	_, err = db.Collection("transactions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shift_id", Value: 1}},
		Options: options.Index().SetName("transactions_by_shift"),
	})
	if err != nil {
		return fmt.Errorf("failed to create shift_id index: %w", err)
	}

	return nil
}

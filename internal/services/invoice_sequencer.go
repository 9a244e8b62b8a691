package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IInvoiceSequencer allocates per-day sequential invoice numbers.
type IInvoiceSequencer interface {
	Next(ctx context.Context, date time.Time) (string, error)
}

const countersCollection = "counters"

// invoicePrefix is part of the persisted invoice number format
// INV-YYYYMMDD-NNNN. It is externally visible on printed receipts and must
// never change.
const invoicePrefix = "INV"

// invoiceSequencer implements IInvoiceSequencer with one counter document
// per calendar day (_id "invoice-YYYYMMDD"), incremented atomically. The
// counter is derived state: a new day's document appears lazily via upsert
// and the sequence restarts at 1.
type invoiceSequencer struct {
	db *mongo.Database
}

// NewInvoiceSequencer creates a new InvoiceSequencer.
func NewInvoiceSequencer(db *mongo.Database) IInvoiceSequencer {
	return &invoiceSequencer{db: db}
}

// Next returns the next invoice number for the given date's calendar day
// (UTC). Concurrent callers each get a distinct number: the findOneAndUpdate
// $inc upsert has exactly one winner per increment.
func (s *invoiceSequencer) Next(ctx context.Context, date time.Time) (string, error) {
	day := date.UTC().Format("20060102")

	filter := bson.M{"_id": "invoice-" + day}
	update := bson.M{"$inc": bson.M{"seq": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		ID  string `bson:"_id"`
		Seq int64  `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("failed to increment invoice counter for %s: %w", day, err)
	}

	return fmt.Sprintf("%s-%s-%04d", invoicePrefix, day, counter.Seq), nil
}

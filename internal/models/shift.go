package models

import (
	"time"
)

// Shift statuses. A shift is created open and transitions exactly once to
// closed; it is never deleted.
const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

// Shift is a cashier's bounded working session. The reconciliation fields
// (closing/expected balance, variance) are only set at close time.
type Shift struct {
	Base            `bson:",inline"`
	KasirID         string     `bson:"kasir_id" json:"kasir_id"`
	KasirName       string     `bson:"kasir_name" json:"kasir_name"`
	OpeningBalance  float64    `bson:"opening_balance" json:"opening_balance"`
	ClosingBalance  *float64   `bson:"closing_balance,omitempty" json:"closing_balance,omitempty"`
	ExpectedBalance *float64   `bson:"expected_balance,omitempty" json:"expected_balance,omitempty"`
	Variance        *float64   `bson:"variance,omitempty" json:"variance,omitempty"`
	OpenedAt        time.Time  `bson:"opened_at" json:"opened_at"`
	ClosedAt        *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	Status          string     `bson:"status" json:"status"`
	Notes           string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

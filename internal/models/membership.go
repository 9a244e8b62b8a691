package models

import (
	"time"
)

// MembershipType defines the purchasable membership terms.
type MembershipType string

const (
	MembershipRegular   MembershipType = "regular"
	MembershipMonthly   MembershipType = "monthly"
	MembershipQuarterly MembershipType = "quarterly"
	MembershipBiannual  MembershipType = "biannual"
	MembershipAnnual    MembershipType = "annual"
)

// TermDays returns the membership term in days, or 0 for unknown types.
// Regular memberships have no natural expiry; callers substitute a long
// configured term for them.
func (t MembershipType) TermDays() int {
	switch t {
	case MembershipMonthly:
		return 30
	case MembershipQuarterly:
		return 90
	case MembershipBiannual:
		return 180
	case MembershipAnnual:
		return 365
	}
	return 0
}

// ValidMembershipType reports whether t is a known membership term.
func ValidMembershipType(t MembershipType) bool {
	switch t {
	case MembershipRegular, MembershipMonthly, MembershipQuarterly, MembershipBiannual, MembershipAnnual:
		return true
	}
	return false
}

// MembershipStatus is derived from EndDate at read time. It is never
// persisted as ground truth, which keeps it from drifting.
type MembershipStatus string

const (
	MembershipActive       MembershipStatus = "active"
	MembershipExpiringSoon MembershipStatus = "expiring_soon"
	MembershipExpired      MembershipStatus = "expired"
)

// Membership represents a customer's purchased membership term.
// The Status field is populated on read only; see MembershipService.
type Membership struct {
	Base           `bson:",inline"`
	CustomerID     string           `bson:"customer_id" json:"customer_id"`
	CustomerName   string           `bson:"customer_name" json:"customer_name"` // Denormalized for display
	MembershipType MembershipType   `bson:"membership_type" json:"membership_type"`
	StartDate      time.Time        `bson:"start_date" json:"start_date"`
	EndDate        time.Time        `bson:"end_date" json:"end_date"`
	Status         MembershipStatus `bson:"-" json:"status"`
	UsageCount     int64            `bson:"usage_count" json:"usage_count"`
	LastUsed       *time.Time       `bson:"last_used,omitempty" json:"last_used,omitempty"`
	Price          float64          `bson:"price" json:"price"`
	Notes          string           `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time        `bson:"created_at" json:"created_at"`

	// DaysRemaining is only populated by the public membership check.
	DaysRemaining *int `bson:"-" json:"days_remaining,omitempty"`
}

package models

import (
	"time"
)

// Customer represents a car-wash customer.
// TotalVisits and TotalSpending are monotonically non-decreasing counters,
// incremented once per completed transaction that names the customer.
type Customer struct {
	Base          `bson:",inline"`
	Name          string    `bson:"name" json:"name"`
	Phone         string    `bson:"phone" json:"phone"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty"`
	VehicleNumber string    `bson:"vehicle_number,omitempty" json:"vehicle_number,omitempty"`
	VehicleType   string    `bson:"vehicle_type,omitempty" json:"vehicle_type,omitempty"`
	JoinDate      time.Time `bson:"join_date" json:"join_date"`
	TotalVisits   int64     `bson:"total_visits" json:"total_visits"`
	TotalSpending float64   `bson:"total_spending" json:"total_spending"`
}

package models

import (
	"time"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentQR   PaymentMethod = "qr"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentQR:
		return true
	}
	return false
}

// TransactionItem is a single line of a sale: a wash service or product at
// a unit price and quantity.
type TransactionItem struct {
	ItemID   string  `bson:"item_id,omitempty" json:"item_id,omitempty"`
	ItemType string  `bson:"item_type,omitempty" json:"item_type,omitempty"` // service or product
	Name     string  `bson:"name,omitempty" json:"name,omitempty"`
	Price    float64 `bson:"price" json:"price"`
	Quantity float64 `bson:"quantity" json:"quantity"`
}

// Transaction is an immutable record of one completed sale, owned by the
// shift and cashier that created it. Invariant: ChangeAmount =
// PaymentReceived - Total >= 0.
//
// Cogs and GrossMargin are reserved fields: persisted as zero, not
// computed by any operation.
type Transaction struct {
	Base            `bson:",inline"`
	InvoiceNumber   string            `bson:"invoice_number" json:"invoice_number"`
	KasirID         string            `bson:"kasir_id" json:"kasir_id"`
	KasirName       string            `bson:"kasir_name" json:"kasir_name"`
	CustomerID      string            `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	CustomerName    string            `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	ShiftID         string            `bson:"shift_id" json:"shift_id"`
	Items           []TransactionItem `bson:"items" json:"items"`
	Subtotal        float64           `bson:"subtotal" json:"subtotal"`
	Total           float64           `bson:"total" json:"total"`
	PaymentMethod   PaymentMethod     `bson:"payment_method" json:"payment_method"`
	PaymentReceived float64           `bson:"payment_received" json:"payment_received"`
	ChangeAmount    float64           `bson:"change_amount" json:"change_amount"`
	Cogs            float64           `bson:"cogs" json:"cogs"`
	GrossMargin     float64           `bson:"gross_margin" json:"gross_margin"`
	Notes           string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
}

package models

import (
	"time"
)

// InventoryItem tracks a stocked consumable or part.
// Low stock means CurrentStock <= MinStock.
type InventoryItem struct {
	Base             `bson:",inline"`
	SKU              string     `bson:"sku" json:"sku"`
	Name             string     `bson:"name" json:"name"`
	Category         string     `bson:"category" json:"category"` // chemicals, supplies, equipment_parts
	Unit             string     `bson:"unit" json:"unit"`         // liter, kg, pcs
	CurrentStock     float64    `bson:"current_stock" json:"current_stock"`
	MinStock         float64    `bson:"min_stock" json:"min_stock"`
	MaxStock         float64    `bson:"max_stock" json:"max_stock"`
	UnitCost         float64    `bson:"unit_cost" json:"unit_cost"` // HPP
	Supplier         string     `bson:"supplier,omitempty" json:"supplier,omitempty"`
	LastPurchaseDate *time.Time `bson:"last_purchase_date,omitempty" json:"last_purchase_date,omitempty"`
	IsActive         bool       `bson:"is_active" json:"is_active"`
}

// LowStock reports whether the item has fallen to or below its minimum.
func (i *InventoryItem) LowStock() bool {
	return i.CurrentStock <= i.MinStock
}

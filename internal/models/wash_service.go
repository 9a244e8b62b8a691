package models

// BOMItem declares inventory consumption per wash service (Bill of
// Materials). Stored for future costing; no operation consumes it yet.
type BOMItem struct {
	InventoryID   string  `bson:"inventory_id" json:"inventory_id"`
	InventoryName string  `bson:"inventory_name" json:"inventory_name"`
	Quantity      float64 `bson:"quantity" json:"quantity"`
	Unit          string  `bson:"unit" json:"unit"`
}

// WashService is a sellable wash/detailing service.
type WashService struct {
	Base            `bson:",inline"`
	Name            string    `bson:"name" json:"name"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Price           float64   `bson:"price" json:"price"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	Category        string    `bson:"category" json:"category"` // exterior, interior, detailing, etc
	IsActive        bool      `bson:"is_active" json:"is_active"`
	BOM             []BOMItem `bson:"bom,omitempty" json:"bom,omitempty"`
}

// Product is a physical item sold over the counter, optionally linked to
// an inventory item.
type Product struct {
	Base        `bson:",inline"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	Category    string  `bson:"category" json:"category"`
	InventoryID string  `bson:"inventory_id,omitempty" json:"inventory_id,omitempty"`
	IsActive    bool    `bson:"is_active" json:"is_active"`
}

package models

import "time"

// Inventory domain models
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InventoryItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null;index" json:"name"`
	Specifics string `json:"specifics"`
	// SKU is optional but unique when present; a nil pointer keeps multiple
	// sku-less rows from colliding on the unique index.
	SKU           *string    `gorm:"uniqueIndex;size:64" json:"sku"`
	CategoryID    uint       `gorm:"not null;index" json:"category_id"`
	Category      Category   `gorm:"foreignKey:CategoryID" json:"-"`
	Quantity      int        `gorm:"not null" json:"quantity"`
	PurchaseDate  time.Time  `json:"purchase_date"`
	PurchasePrice float64    `gorm:"not null" json:"purchase_price"`
	MRP           float64    `gorm:"not null" json:"mrp"`
	Discount      float64    `json:"discount"` // percentage 0..100
	ExpiryDate    *time.Time `gorm:"index" json:"expiry_date"`
	Supplier      string     `json:"supplier"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

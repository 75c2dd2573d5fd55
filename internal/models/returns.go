package models

import "time"

// Return records inventory leaving the sellable pool after a sale (damaged or
// sent back), with expected vs actual refund tracking. Creating one decrements
// the referenced inventory row; deleting it restores the quantity.
type Return struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	InventoryID    uint      `gorm:"not null;index" json:"inventory_id"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	ReturnDate     time.Time `gorm:"not null;index" json:"return_date"`
	ExpectedRefund float64   `gorm:"not null" json:"expected_refund"`
	ActualRefund   float64   `gorm:"not null" json:"actual_refund"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

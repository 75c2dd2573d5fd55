package models

import "time"

// Invoicing models. An invoice owns its items; items reference inventory rows
// whose quantity is adjusted transactionally on create/delete.
type Invoice struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string        `gorm:"not null;uniqueIndex;size:64" json:"invoice_number"`
	CustomerName   string        `gorm:"not null;index" json:"customer_name"`
	CustomerEmail  string        `json:"customer_email"`
	CustomerPhone  string        `json:"customer_phone"`
	Date           time.Time     `gorm:"not null;index" json:"date"`
	DueDate        *time.Time    `json:"due_date"`
	Subtotal       float64       `gorm:"not null" json:"subtotal"`
	TaxRate        float64       `json:"tax_rate"`
	TaxAmount      float64       `json:"tax_amount"`
	DiscountAmount float64       `json:"discount_amount"`
	Total          float64       `gorm:"not null" json:"total"`
	PaymentMethod  string        `gorm:"not null;default:'cash'" json:"payment_method"`
	PaymentStatus  string        `gorm:"not null;default:'pending';index" json:"payment_status"`
	Items          []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type InvoiceItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"not null;index" json:"invoice_id"`
	InventoryID uint    `gorm:"not null;index" json:"inventory_id"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	TotalPrice  float64 `gorm:"not null" json:"total_price"`
}

// PaymentStatuses enumerates the accepted invoice payment states.
var PaymentStatuses = []string{"pending", "paid", "partially_paid", "overdue", "cancelled"}

func ValidPaymentStatus(s string) bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

package services

import (
	"errors"
	"time"

	"github.com/mohit-pareek09/smart-erp/internal/db"
	"github.com/mohit-pareek09/smart-erp/internal/models"

	"gorm.io/gorm"
)

// InvoiceService owns the transactional invoice workflows: creation (header +
// items + inventory decrements) and deletion (inventory restore + cascade).
type InvoiceService struct {
	DB *gorm.DB
}

func NewInvoiceService(gdb *gorm.DB) *InvoiceService { return &InvoiceService{DB: gdb} }

type InvoiceItemInput struct {
	InventoryID uint    `json:"inventory_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type CreateInvoiceInput struct {
	InvoiceNumber  string             `json:"invoice_number"`
	CustomerName   string             `json:"customer_name"`
	CustomerEmail  string             `json:"customer_email"`
	CustomerPhone  string             `json:"customer_phone"`
	InvoiceDate    *time.Time         `json:"invoice_date"`
	DueDate        *time.Time         `json:"due_date"`
	Items          []InvoiceItemInput `json:"items"`
	Subtotal       float64            `json:"subtotal"`
	TaxRate        float64            `json:"tax_rate"`
	TaxAmount      float64            `json:"tax_amount"`
	DiscountAmount float64            `json:"discount_amount"`
	TotalAmount    float64            `json:"total_amount"`
	PaymentMethod  string             `json:"payment_method"`
	PaymentStatus  string             `json:"payment_status"`
}

// InvoiceItemDetail is an invoice line enriched with product display fields.
type InvoiceItemDetail struct {
	models.InvoiceItem
	ProductName string  `json:"product_name"`
	SKU         *string `json:"sku"`
	Specifics   string  `json:"specifics"`
}

// InvoiceDetail is the invoice header joined with its enriched items.
type InvoiceDetail struct {
	models.Invoice
	Items []InvoiceItemDetail `json:"items"`
}

var invoiceRequired = []string{"invoice_number", "customer_name", "items", "total_amount"}
var invoiceItemRequired = []string{"inventory_id", "quantity", "unit_price", "total_price"}

// Create runs the invoice creation workflow inside one transaction: validate,
// reject duplicate invoice numbers, insert the header, then per item (in input
// order) check existence and stock, insert the line and decrement inventory.
// Duplicate inventory ids across lines decrement sequentially - each check
// sees the quantity left by the lines before it. Any failure rolls the whole
// transaction back.
func (s *InvoiceService) Create(in CreateInvoiceInput) (*InvoiceDetail, error) {
	var missing []string
	if in.InvoiceNumber == "" {
		missing = append(missing, "invoice_number")
	}
	if in.CustomerName == "" {
		missing = append(missing, "customer_name")
	}
	if len(in.Items) == 0 {
		missing = append(missing, "items")
	}
	if in.TotalAmount == 0 {
		missing = append(missing, "total_amount")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "Required fields missing", Required: invoiceRequired, Missing: missing}
	}

	inv := models.Invoice{
		InvoiceNumber:  in.InvoiceNumber,
		CustomerName:   in.CustomerName,
		CustomerEmail:  in.CustomerEmail,
		CustomerPhone:  in.CustomerPhone,
		Date:           time.Now(),
		DueDate:        in.DueDate,
		Subtotal:       in.Subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      in.TaxAmount,
		DiscountAmount: in.DiscountAmount,
		Total:          in.TotalAmount,
		PaymentMethod:  "cash",
		PaymentStatus:  "pending",
	}
	if in.InvoiceDate != nil {
		inv.Date = *in.InvoiceDate
	}
	if in.Subtotal == 0 {
		inv.Subtotal = in.TotalAmount
	}
	if in.PaymentMethod != "" {
		inv.PaymentMethod = in.PaymentMethod
	}
	if in.PaymentStatus != "" {
		inv.PaymentStatus = in.PaymentStatus
	}

	err := db.InTx(s.DB, "invoice_create", func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", in.InvoiceNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Message: "Invoice number already exists"}
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for _, it := range in.Items {
			if it.InventoryID == 0 || it.Quantity <= 0 || it.UnitPrice == 0 || it.TotalPrice == 0 {
				return &ValidationError{Message: "Invalid item data", Required: invoiceItemRequired, Item: it}
			}
			var stock models.InventoryItem
			if err := tx.First(&stock, it.InventoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "Inventory item", Fields: map[string]any{"inventory_id": it.InventoryID}}
				}
				return err
			}
			if stock.Quantity < it.Quantity {
				return &InsufficientStockError{Product: stock.Name, Available: stock.Quantity, Requested: it.Quantity}
			}
			line := models.InvoiceItem{
				InvoiceID:   inv.ID,
				InventoryID: it.InventoryID,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  it.TotalPrice,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			if err := decrementStock(tx, it.InventoryID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(inv.ID)
}

// Get returns the invoice header with its items enriched with product
// name/sku/specifics for display.
func (s *InvoiceService) Get(id uint) (*InvoiceDetail, error) {
	var inv models.Invoice
	if err := s.DB.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Invoice"}
		}
		return nil, err
	}
	inv.Items = nil
	items, err := s.itemDetails(id)
	if err != nil {
		return nil, err
	}
	return &InvoiceDetail{Invoice: inv, Items: items}, nil
}

func (s *InvoiceService) itemDetails(invoiceID uint) ([]InvoiceItemDetail, error) {
	items := []InvoiceItemDetail{}
	err := s.DB.Table("invoice_items").
		Select("invoice_items.*, inventory_items.name AS product_name, inventory_items.sku AS sku, inventory_items.specifics AS specifics").
		Joins("JOIN inventory_items ON inventory_items.id = invoice_items.inventory_id").
		Where("invoice_items.invoice_id = ?", invoiceID).
		Order("invoice_items.id").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes an invoice and its items, restoring each line's quantity to
// the referenced inventory row inside the same transaction. Returns the
// number of line items restored.
func (s *InvoiceService) Delete(id uint) (int, error) {
	restored := 0
	err := db.InTx(s.DB, "invoice_delete", func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Invoice"}
			}
			return err
		}
		var items []models.InvoiceItem
		if err := tx.Where("invoice_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if err := restoreStock(tx, it.InventoryID, it.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Invoice{}, id).Error; err != nil {
			return err
		}
		restored = len(items)
		return nil
	})
	return restored, err
}

// decrementStock subtracts qty from an inventory row. The caller is expected
// to have verified availability against the same transaction.
func decrementStock(tx *gorm.DB, inventoryID uint, qty int) error {
	return tx.Model(&models.InventoryItem{}).Where("id = ?", inventoryID).
		Updates(map[string]any{"quantity": gorm.Expr("quantity - ?", qty), "updated_at": time.Now()}).Error
}

func restoreStock(tx *gorm.DB, inventoryID uint, qty int) error {
	return tx.Model(&models.InventoryItem{}).Where("id = ?", inventoryID).
		Updates(map[string]any{"quantity": gorm.Expr("quantity + ?", qty), "updated_at": time.Now()}).Error
}

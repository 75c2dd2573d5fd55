package services

import (
	"errors"
	"time"

	"github.com/mohit-pareek09/smart-erp/internal/db"
	"github.com/mohit-pareek09/smart-erp/internal/models"

	"gorm.io/gorm"
)

// ReturnService owns the stock-return workflows. A return records units sent
// back to a supplier, so creating one removes quantity from inventory and
// deleting one puts it back.
type ReturnService struct {
	DB *gorm.DB
}

func NewReturnService(gdb *gorm.DB) *ReturnService { return &ReturnService{DB: gdb} }

type ReturnInput struct {
	InventoryID    uint       `json:"inventory_id"`
	Quantity       int        `json:"quantity"`
	ReturnDate     *time.Time `json:"return_date"`
	ExpectedRefund float64    `json:"expected_refund"`
	ActualRefund   float64    `json:"actual_refund"`
	Notes          string     `json:"notes"`
}

// ReturnDetail is a return joined with display fields of the product it refers to.
type ReturnDetail struct {
	models.Return
	ProductName   string  `json:"product_name"`
	SKU           *string `json:"sku"`
	Supplier      string  `json:"supplier"`
	PurchasePrice float64 `json:"purchase_price"`
	MRP           float64 `json:"mrp"`
	Discount      float64 `json:"discount"`
}

var returnRequired = []string{"inventory_id", "quantity", "expected_refund", "actual_refund"}

func validateReturn(in ReturnInput) *ValidationError {
	var missing []string
	if in.InventoryID == 0 {
		missing = append(missing, "inventory_id")
	}
	if in.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if in.ExpectedRefund == 0 {
		missing = append(missing, "expected_refund")
	}
	if in.ActualRefund == 0 {
		missing = append(missing, "actual_refund")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Required fields missing", Required: returnRequired, Missing: missing}
	}
	return nil
}

// Create records a return and decrements the referenced inventory row by the
// returned quantity. Quantity may exceed current stock: the units left the
// shelf when the return was physically packed, so no availability guard runs
// here and the row can go negative until reconciled.
func (s *ReturnService) Create(in ReturnInput) (*ReturnDetail, error) {
	if verr := validateReturn(in); verr != nil {
		return nil, verr
	}
	ret := models.Return{
		InventoryID:    in.InventoryID,
		Quantity:       in.Quantity,
		ReturnDate:     time.Now(),
		ExpectedRefund: in.ExpectedRefund,
		ActualRefund:   in.ActualRefund,
		Notes:          in.Notes,
	}
	if in.ReturnDate != nil {
		ret.ReturnDate = *in.ReturnDate
	}
	err := db.InTx(s.DB, "return_create", func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, in.InventoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Inventory item", Fields: map[string]any{"inventory_id": in.InventoryID}}
			}
			return err
		}
		if err := tx.Create(&ret).Error; err != nil {
			return err
		}
		return decrementStock(tx, in.InventoryID, in.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ret.ID)
}

// Update edits a return. If the inventory reference or the quantity changed,
// the original quantity goes back to the original row and the new quantity
// comes off the new row; otherwise stock is untouched.
func (s *ReturnService) Update(id uint, in ReturnInput) (*ReturnDetail, error) {
	if verr := validateReturn(in); verr != nil {
		return nil, verr
	}
	err := db.InTx(s.DB, "return_update", func(tx *gorm.DB) error {
		var original models.Return
		if err := tx.First(&original, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Return"}
			}
			return err
		}
		var item models.InventoryItem
		if err := tx.First(&item, in.InventoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Inventory item", Fields: map[string]any{"inventory_id": in.InventoryID}}
			}
			return err
		}
		if original.InventoryID != in.InventoryID || original.Quantity != in.Quantity {
			if err := restoreStock(tx, original.InventoryID, original.Quantity); err != nil {
				return err
			}
			if err := decrementStock(tx, in.InventoryID, in.Quantity); err != nil {
				return err
			}
		}
		returnDate := original.ReturnDate
		if in.ReturnDate != nil {
			returnDate = *in.ReturnDate
		}
		return tx.Model(&models.Return{}).Where("id = ?", id).Updates(map[string]any{
			"inventory_id":    in.InventoryID,
			"quantity":        in.Quantity,
			"return_date":     returnDate,
			"expected_refund": in.ExpectedRefund,
			"actual_refund":   in.ActualRefund,
			"notes":           in.Notes,
			"updated_at":      time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a return and restores its quantity to the referenced
// inventory row. Returns which row was credited and by how much.
func (s *ReturnService) Delete(id uint) (inventoryID uint, restored int, err error) {
	err = db.InTx(s.DB, "return_delete", func(tx *gorm.DB) error {
		var ret models.Return
		if err := tx.First(&ret, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Return"}
			}
			return err
		}
		if err := restoreStock(tx, ret.InventoryID, ret.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&models.Return{}, id).Error; err != nil {
			return err
		}
		inventoryID = ret.InventoryID
		restored = ret.Quantity
		return nil
	})
	return inventoryID, restored, err
}

// Get returns a single return joined with product display fields.
func (s *ReturnService) Get(id uint) (*ReturnDetail, error) {
	var out ReturnDetail
	err := s.returnQuery().Where("returns.id = ?", id).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, &NotFoundError{Resource: "Return"}
	}
	return &out, nil
}

// ReturnFilter narrows List; zero values mean no constraint.
type ReturnFilter struct {
	InventoryID uint
	From        *time.Time
	To          *time.Time
}

// List returns returns matching the filter, newest first, joined with product
// display fields.
func (s *ReturnService) List(f ReturnFilter) ([]ReturnDetail, error) {
	out := []ReturnDetail{}
	q := s.returnQuery()
	if f.InventoryID != 0 {
		q = q.Where("returns.inventory_id = ?", f.InventoryID)
	}
	if f.From != nil {
		q = q.Where("returns.return_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("returns.return_date < ?", *f.To)
	}
	err := q.Order("returns.return_date DESC, returns.id DESC").Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReturnService) returnQuery() *gorm.DB {
	return s.DB.Table("returns").
		Select("returns.*, inventory_items.name AS product_name, inventory_items.sku AS sku, inventory_items.supplier AS supplier, inventory_items.purchase_price AS purchase_price, inventory_items.mrp AS mrp, inventory_items.discount AS discount").
		Joins("JOIN inventory_items ON inventory_items.id = returns.inventory_id")
}

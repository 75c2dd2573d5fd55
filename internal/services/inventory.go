package services

import (
	"errors"
	"math"

	"github.com/mohit-pareek09/smart-erp/internal/db"
	"github.com/mohit-pareek09/smart-erp/internal/models"

	"gorm.io/gorm"
)

// DefaultDiscount derives a discount percentage from margin when the caller
// does not supply one: (mrp - purchasePrice) / mrp * 100, rounded to two
// decimals. Returns 0 for non-positive mrp.
func DefaultDiscount(mrp, purchasePrice float64) float64 {
	if mrp <= 0 {
		return 0
	}
	pct := (mrp - purchasePrice) / mrp * 100
	return math.Round(pct*100) / 100
}

// Quantity adjustment operations accepted by AdjustQuantity.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpSet    = "set"
)

// AdjustQuantity applies an add/remove/set operation to an inventory row's
// quantity. Remove refuses to take the row below zero. Returns the updated row.
func AdjustQuantity(gdb *gorm.DB, id uint, qty int, op string) (*models.InventoryItem, error) {
	if qty < 0 {
		return nil, &ValidationError{Message: "Quantity must be non-negative"}
	}
	var item models.InventoryItem
	err := db.InTx(gdb, "inventory_adjust", func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Inventory item"}
			}
			return err
		}
		switch op {
		case OpAdd:
			item.Quantity += qty
		case OpRemove:
			if item.Quantity < qty {
				return &InsufficientStockError{Product: item.Name, Available: item.Quantity, Requested: qty}
			}
			item.Quantity -= qty
		case OpSet:
			item.Quantity = qty
		default:
			return &ValidationError{Message: "Invalid operation, expected add, remove or set"}
		}
		return tx.Model(&models.InventoryItem{}).Where("id = ?", id).Update("quantity", item.Quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

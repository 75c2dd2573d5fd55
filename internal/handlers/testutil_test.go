package handlers

import (
	"fmt"
	"testing"

	"github.com/mohit-pareek09/smart-erp/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Customer{}, &models.InventoryItem{}, &models.Invoice{}, &models.InvoiceItem{}, &models.Return{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	cat := models.Category{Name: name, Description: "test category"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}
	return cat
}

func seedInventory(t *testing.T, db *gorm.DB, name string, categoryID uint, quantity int) models.InventoryItem {
	t.Helper()
	sku := name + "-SKU"
	item := models.InventoryItem{
		Name:          name,
		Specifics:     "500mg",
		SKU:           &sku,
		CategoryID:    categoryID,
		Quantity:      quantity,
		PurchasePrice: 40,
		MRP:           50,
		Discount:      20,
		Supplier:      "Acme Traders",
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("inventory: %v", err)
	}
	return item
}

func inventoryQuantity(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var item models.InventoryItem
	if err := db.First(&item, id).Error; err != nil {
		t.Fatalf("reload inventory %d: %v", id, err)
	}
	return item.Quantity
}

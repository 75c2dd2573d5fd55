package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohit-pareek09/smart-erp/internal/models"
)

func TestDashboardSummary(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	seedInventory(t, db, "Paracetamol", cat.ID, 10)
	inv := models.Invoice{InvoiceNumber: "INV-1", CustomerName: "Ravi Stores", Subtotal: 200, Total: 200, PaymentMethod: "cash", PaymentStatus: "pending"}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	paid := models.Invoice{InvoiceNumber: "INV-2", CustomerName: "Metro Mart", Subtotal: 300, Total: 300, PaymentMethod: "cash", PaymentStatus: "paid"}
	if err := db.Create(&paid).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewDashboardHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	w := httptest.NewRecorder()
	h.Summary(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("summary failed: %d", w.Code)
	}
	var resp struct {
		InventoryItems int64   `json:"inventory_items"`
		Invoices       int64   `json:"invoices"`
		TotalRevenue   float64 `json:"total_revenue"`
		PendingRevenue float64 `json:"pending_revenue"`
		StockValue     float64 `json:"stock_value"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.InventoryItems != 1 || resp.Invoices != 2 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if resp.TotalRevenue != 500 || resp.PendingRevenue != 200 {
		t.Fatalf("unexpected revenue: %+v", resp)
	}
	if resp.StockValue != 400 {
		t.Fatalf("expected stock value 400 got %v", resp.StockValue)
	}
}

func TestDashboardExpiringAndLowStock(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	soon := time.Now().AddDate(0, 0, 10)
	far := time.Now().AddDate(1, 0, 0)
	expiring := models.InventoryItem{Name: "Amoxicillin", CategoryID: cat.ID, Quantity: 50, PurchasePrice: 10, MRP: 15, ExpiryDate: &soon}
	longLife := models.InventoryItem{Name: "Bandages", CategoryID: cat.ID, Quantity: 3, PurchasePrice: 2, MRP: 4, ExpiryDate: &far}
	for _, item := range []*models.InventoryItem{&expiring, &longLife} {
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("inventory: %v", err)
		}
	}
	h := NewDashboardHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/expiring-products?days=30", nil)
	w := httptest.NewRecorder()
	h.ExpiringProducts(w, req)
	var items []models.InventoryItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Amoxicillin" {
		t.Fatalf("unexpected expiring list: %+v", items)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/dashboard/low-stock?threshold=5", nil)
	w = httptest.NewRecorder()
	h.LowStock(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Bandages" {
		t.Fatalf("unexpected low-stock list: %+v", items)
	}
}

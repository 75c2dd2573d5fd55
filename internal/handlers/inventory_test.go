package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohit-pareek09/smart-erp/internal/models"
)

func TestInventoryCreateDefaultsDiscount(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	h := NewInventoryHandler(db)

	body := fmt.Sprintf(`{"name":"Paracetamol","category_id":%d,"quantity":10,"purchase_price":40,"mrp":50}`, cat.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.InventoryItem
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// (50-40)/50*100 = 20
	if created.Discount != 20 {
		t.Fatalf("expected derived discount 20 got %v", created.Discount)
	}
}

func TestInventoryCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewInventoryHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/inventory", strings.NewReader(`{"name":""}`))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestInventoryCreateUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	h := NewInventoryHandler(db)

	body := `{"name":"Paracetamol","category_id":99,"quantity":10,"purchase_price":40,"mrp":50}`
	req := httptest.NewRequest(http.MethodPost, "/api/inventory", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Category does not exist") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestInventoryCreateDuplicateSKU(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	seedInventory(t, db, "Paracetamol", cat.ID, 10)
	h := NewInventoryHandler(db)

	body := fmt.Sprintf(`{"name":"Other","sku":"Paracetamol-SKU","category_id":%d,"quantity":1,"purchase_price":1,"mrp":2}`, cat.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "SKU already exists") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestInventoryListSearch(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	seedInventory(t, db, "Paracetamol", cat.ID, 10)
	seedInventory(t, db, "Ibuprofen", cat.ID, 5)
	h := NewInventoryHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory?search=ibu", nil)
	w := httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d", w.Code)
	}
	var items []models.InventoryItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Ibuprofen" {
		t.Fatalf("unexpected search result: %+v", items)
	}
}

func TestInventoryDeleteGuards(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	item := seedInventory(t, db, "Paracetamol", cat.ID, 10)
	h := NewInventoryHandler(db)

	inv := models.Invoice{InvoiceNumber: "INV-1", CustomerName: "Ravi Stores", Subtotal: 50, Total: 50, PaymentMethod: "cash", PaymentStatus: "pending"}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	line := models.InvoiceItem{InvoiceID: inv.ID, InventoryID: item.ID, Quantity: 1, UnitPrice: 50, TotalPrice: 50}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("line: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/inventory?id=%d", item.ID), nil)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 while referenced got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "referenced by invoices") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	// Drop the reference; delete should pass.
	if err := db.Delete(&models.InvoiceItem{}, line.ID).Error; err != nil {
		t.Fatalf("cleanup line: %v", err)
	}
	w = httptest.NewRecorder()
	h.Delete(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/inventory?id=%d", item.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestInventoryQuantityOps(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	item := seedInventory(t, db, "Paracetamol", cat.ID, 10)
	h := NewInventoryHandler(db)

	patch := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/inventory/quantity?id=%d", item.ID), strings.NewReader(body))
		w := httptest.NewRecorder()
		h.Quantity(w, req)
		return w
	}

	if w := patch(`{"quantity":5,"operation":"add"}`); w.Code != http.StatusOK {
		t.Fatalf("add failed: %d %s", w.Code, w.Body.String())
	}
	if got := inventoryQuantity(t, db, item.ID); got != 15 {
		t.Fatalf("expected 15 after add got %d", got)
	}

	if w := patch(`{"quantity":3,"operation":"remove"}`); w.Code != http.StatusOK {
		t.Fatalf("remove failed: %d %s", w.Code, w.Body.String())
	}
	if got := inventoryQuantity(t, db, item.ID); got != 12 {
		t.Fatalf("expected 12 after remove got %d", got)
	}

	if w := patch(`{"quantity":100,"operation":"remove"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("over-remove should 400, got %d", w.Code)
	}
	if got := inventoryQuantity(t, db, item.ID); got != 12 {
		t.Fatalf("failed remove must not change stock, got %d", got)
	}

	if w := patch(`{"quantity":7,"operation":"set"}`); w.Code != http.StatusOK {
		t.Fatalf("set failed: %d %s", w.Code, w.Body.String())
	}
	if got := inventoryQuantity(t, db, item.ID); got != 7 {
		t.Fatalf("expected 7 after set got %d", got)
	}

	if w := patch(`{"quantity":1,"operation":"divide"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad op should 400, got %d", w.Code)
	}
}

func TestInventoryStats(t *testing.T) {
	db := setupTestDB(t)
	cat := seedCategory(t, db, "Medicines")
	seedInventory(t, db, "Paracetamol", cat.ID, 100)
	seedInventory(t, db, "Ibuprofen", cat.ID, 2)
	h := NewInventoryHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/stats", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stats failed: %d", w.Code)
	}
	var resp struct {
		TotalItems    int64   `json:"total_items"`
		TotalQuantity int64   `json:"total_quantity"`
		StockValue    float64 `json:"stock_value"`
		LowStock      int64   `json:"low_stock"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalItems != 2 || resp.TotalQuantity != 102 {
		t.Fatalf("unexpected totals: %+v", resp)
	}
	// 102 units at purchase price 40
	if resp.StockValue != 4080 {
		t.Fatalf("expected stock value 4080 got %v", resp.StockValue)
	}
	if resp.LowStock != 1 {
		t.Fatalf("expected 1 low-stock row got %d", resp.LowStock)
	}
}

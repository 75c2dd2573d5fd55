package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohit-pareek09/smart-erp/internal/models"
)

func TestCustomerCRUD(t *testing.T) {
	db := setupTestDB(t)
	h := NewCustomerHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{"name":"Ravi Stores","email":"ravi@example.com","phone":"9999"}`))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	var c models.Customer
	if err := db.Where("name = ?", "Ravi Stores").First(&c).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}

	upd := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/customers?id=%d", c.ID), strings.NewReader(`{"phone":"8888"}`))
	updW := httptest.NewRecorder()
	h.Update(updW, upd)
	if updW.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", updW.Code, updW.Body.String())
	}
	if err := db.First(&c, c.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if c.Phone != "8888" {
		t.Fatalf("expected updated phone got %q", c.Phone)
	}
}

func TestCustomerDeleteGuard(t *testing.T) {
	db := setupTestDB(t)
	h := NewCustomerHandler(db)

	c := models.Customer{Name: "Ravi Stores"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	inv := models.Invoice{InvoiceNumber: "INV-1", CustomerName: "Ravi Stores", Subtotal: 50, Total: 50, PaymentMethod: "cash", PaymentStatus: "pending"}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/customers?id=%d", c.ID), nil)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 while invoices exist got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Cannot delete customer with invoices") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	if err := db.Delete(&models.Invoice{}, inv.ID).Error; err != nil {
		t.Fatalf("cleanup invoice: %v", err)
	}
	w = httptest.NewRecorder()
	h.Delete(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/customers?id=%d", c.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

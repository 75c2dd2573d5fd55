package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mohit-pareek09/smart-erp/internal/httpx"
	"github.com/mohit-pareek09/smart-erp/internal/models"

	"gorm.io/gorm"
)

type DashboardHandler struct{ DB *gorm.DB }

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

// Summary aggregates the headline numbers shown on the landing screen.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var itemCount, invoiceCount, returnCount, customerCount int64
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.InventoryItem{}, &itemCount},
		{&models.Invoice{}, &invoiceCount},
		{&models.Return{}, &returnCount},
		{&models.Customer{}, &customerCount},
	}
	for _, c := range counts {
		if err := h.DB.Model(c.model).Count(c.dst).Error; err != nil {
			writeServiceError(w, err)
			return
		}
	}
	var revenue struct {
		Total   float64
		Pending float64
	}
	if err := h.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total),0) AS total, COALESCE(SUM(CASE WHEN payment_status IN ('pending','partially_paid','overdue') THEN total ELSE 0 END),0) AS pending").
		Scan(&revenue).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var stockValue float64
	if err := h.DB.Model(&models.InventoryItem{}).
		Select("COALESCE(SUM(quantity * purchase_price),0)").
		Scan(&stockValue).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"inventory_items": itemCount,
		"invoices":        invoiceCount,
		"returns":         returnCount,
		"customers":       customerCount,
		"total_revenue":   revenue.Total,
		"pending_revenue": revenue.Pending,
		"stock_value":     stockValue,
	})
}

// ExpiringProducts lists items whose expiry falls within the next N days
// (?days=, default 30), soonest first.
func (h *DashboardHandler) ExpiringProducts(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	now := time.Now()
	var items []models.InventoryItem
	err := h.DB.Where("expiry_date IS NOT NULL AND expiry_date > ? AND expiry_date <= ?", now, now.AddDate(0, 0, days)).
		Order("expiry_date asc").
		Find(&items).Error
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

// LowStock lists items at or below the threshold (?threshold=, default 10),
// emptiest first.
func (h *DashboardHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := lowStockThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			threshold = n
		}
	}
	var items []models.InventoryItem
	err := h.DB.Where("quantity <= ?", threshold).
		Order("quantity asc, name asc").
		Find(&items).Error
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mohit-pareek09/smart-erp/internal/httpx"
	"github.com/mohit-pareek09/smart-erp/internal/models"
	"github.com/mohit-pareek09/smart-erp/internal/services"

	"gorm.io/gorm"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc}
}

// invoiceSortColumns whitelists sortable columns; anything else falls back to date.
var invoiceSortColumns = map[string]string{
	"date":           "date",
	"due_date":       "due_date",
	"total":          "total",
	"invoice_number": "invoice_number",
	"customer_name":  "customer_name",
	"created_at":     "created_at",
}

// List returns a page of invoices with optional customer, status and date
// range filters. Items are not loaded here; Get returns the full detail.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dbq := h.DB.Model(&models.Invoice{})
	if customer := strings.TrimSpace(q.Get("customer")); customer != "" {
		dbq = dbq.Where("lower(customer_name) LIKE ?", "%"+strings.ToLower(customer)+"%")
	}
	if status := q.Get("payment_status"); status != "" {
		dbq = dbq.Where("payment_status = ?", status)
	}
	if from := q.Get("start_date"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			dbq = dbq.Where("date >= ?", t)
		}
	}
	if to := q.Get("end_date"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			dbq = dbq.Where("date < ?", t.AddDate(0, 0, 1))
		}
	}

	sortCol := invoiceSortColumns["date"]
	if col, ok := invoiceSortColumns[q.Get("sort")]; ok {
		sortCol = col
	}
	dir := "DESC"
	if strings.EqualFold(q.Get("order"), "asc") {
		dir = "ASC"
	}

	pageSize := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var invoices []models.Invoice
	if err := dbq.Order(sortCol + " " + dir).Limit(pageSize).Offset(offset).Find(&invoices).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": total, "limit": pageSize, "offset": offset})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	detail, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateInvoiceInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	detail, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, detail)
}

// Update edits header fields only. Line items are immutable after creation;
// correcting a line means deleting the invoice and reissuing it.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var inv models.Invoice
	if err := h.DB.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Invoice not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var in struct {
		CustomerName   *string    `json:"customer_name"`
		CustomerEmail  *string    `json:"customer_email"`
		CustomerPhone  *string    `json:"customer_phone"`
		DueDate        *time.Time `json:"due_date"`
		TaxRate        *float64   `json:"tax_rate"`
		TaxAmount      *float64   `json:"tax_amount"`
		DiscountAmount *float64   `json:"discount_amount"`
		PaymentMethod  *string    `json:"payment_method"`
	}
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.CustomerName != nil && strings.TrimSpace(*in.CustomerName) != "" {
		inv.CustomerName = strings.TrimSpace(*in.CustomerName)
	}
	if in.CustomerEmail != nil {
		inv.CustomerEmail = *in.CustomerEmail
	}
	if in.CustomerPhone != nil {
		inv.CustomerPhone = *in.CustomerPhone
	}
	if in.DueDate != nil {
		inv.DueDate = in.DueDate
	}
	if in.TaxRate != nil {
		inv.TaxRate = *in.TaxRate
	}
	if in.TaxAmount != nil {
		inv.TaxAmount = *in.TaxAmount
	}
	if in.DiscountAmount != nil {
		inv.DiscountAmount = *in.DiscountAmount
	}
	if in.PaymentMethod != nil && *in.PaymentMethod != "" {
		inv.PaymentMethod = *in.PaymentMethod
	}
	if err := h.DB.Save(&inv).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// PaymentStatus sets an invoice's payment state to one of the accepted values.
func (h *InvoiceHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !models.ValidPaymentStatus(in.PaymentStatus) {
		httpx.JSONFields(w, http.StatusBadRequest, "Invalid payment status", map[string]any{"valid_statuses": models.PaymentStatuses})
		return
	}
	res := h.DB.Model(&models.Invoice{}).Where("id = ?", id).
		Updates(map[string]any{"payment_status": in.PaymentStatus, "updated_at": time.Now()})
	if res.Error != nil {
		writeServiceError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	var inv models.Invoice
	if err := h.DB.First(&inv, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	restored, err := h.Svc.Delete(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Invoice deleted", "items_restored": restored})
}

// Stats summarizes revenue and payment-state counts, with an optional
// start_date/end_date window.
func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dbq := h.DB.Model(&models.Invoice{})
	if from := q.Get("start_date"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			dbq = dbq.Where("date >= ?", t)
		}
	}
	if to := q.Get("end_date"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			dbq = dbq.Where("date < ?", t.AddDate(0, 0, 1))
		}
	}
	var agg struct {
		Count   int64
		Revenue float64
	}
	if err := dbq.Select("COUNT(*) AS count, COALESCE(SUM(total),0) AS revenue").Scan(&agg).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	byStatus := map[string]map[string]any{}
	rows := []struct {
		PaymentStatus string
		N             int64
		Amount        float64
	}{}
	statusQ := h.DB.Model(&models.Invoice{}).
		Select("payment_status, COUNT(*) AS n, COALESCE(SUM(total),0) AS amount").
		Group("payment_status")
	if err := statusQ.Scan(&rows).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	for _, row := range rows {
		byStatus[row.PaymentStatus] = map[string]any{"count": row.N, "amount": row.Amount}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"total_invoices": agg.Count,
		"total_revenue":  agg.Revenue,
		"by_status":      byStatus,
	})
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mohit-pareek09/smart-erp/internal/httpx"
	"github.com/mohit-pareek09/smart-erp/internal/models"
	"github.com/mohit-pareek09/smart-erp/internal/services"

	"gorm.io/gorm"
)

type ReturnHandler struct {
	DB  *gorm.DB
	Svc *services.ReturnService
}

func NewReturnHandler(db *gorm.DB, svc *services.ReturnService) *ReturnHandler {
	return &ReturnHandler{DB: db, Svc: svc}
}

func (h *ReturnHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f services.ReturnFilter
	if v := q.Get("inventory_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			f.InventoryID = uint(id)
		}
	}
	if v := q.Get("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.AddDate(0, 0, 1)
			f.To = &end
		}
	}
	out, err := h.Svc.List(f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *ReturnHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	out, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *ReturnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ReturnInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	out, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *ReturnHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in services.ReturnInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	out, err := h.Svc.Update(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *ReturnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inventoryID, restored, err := h.Svc.Delete(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":           "Return deleted",
		"inventory_id":      inventoryID,
		"quantity_restored": restored,
	})
}

// Stats aggregates refund totals, monthly buckets and the most-returned
// products. Months are bucketed in Go so sqlite and postgres agree.
func (h *ReturnHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var agg struct {
		Count          int64
		TotalQuantity  int64
		ExpectedRefund float64
		ActualRefund   float64
	}
	err := h.DB.Model(&models.Return{}).
		Select("COUNT(*) AS count, COALESCE(SUM(quantity),0) AS total_quantity, COALESCE(SUM(expected_refund),0) AS expected_refund, COALESCE(SUM(actual_refund),0) AS actual_refund").
		Scan(&agg).Error
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var all []models.Return
	if err := h.DB.Order("return_date asc").Find(&all).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	monthly := map[string]map[string]any{}
	for _, ret := range all {
		key := ret.ReturnDate.Format("2006-01")
		bucket, ok := monthly[key]
		if !ok {
			bucket = map[string]any{"count": int64(0), "quantity": int64(0), "actual_refund": float64(0)}
			monthly[key] = bucket
		}
		bucket["count"] = bucket["count"].(int64) + 1
		bucket["quantity"] = bucket["quantity"].(int64) + int64(ret.Quantity)
		bucket["actual_refund"] = bucket["actual_refund"].(float64) + ret.ActualRefund
	}

	topProducts := []struct {
		InventoryID uint    `json:"inventory_id"`
		ProductName string  `json:"product_name"`
		Quantity    int64   `json:"quantity"`
		Refund      float64 `json:"refund"`
	}{}
	err = h.DB.Table("returns").
		Select("returns.inventory_id, inventory_items.name AS product_name, COALESCE(SUM(returns.quantity),0) AS quantity, COALESCE(SUM(returns.actual_refund),0) AS refund").
		Joins("JOIN inventory_items ON inventory_items.id = returns.inventory_id").
		Group("returns.inventory_id, inventory_items.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&topProducts).Error
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"total_returns":   agg.Count,
		"total_quantity":  agg.TotalQuantity,
		"expected_refund": agg.ExpectedRefund,
		"actual_refund":   agg.ActualRefund,
		"refund_variance": agg.ActualRefund - agg.ExpectedRefund,
		"monthly":         monthly,
		"top_products":    topProducts,
	})
}

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
	"github.com/mohit-pareek09/smart-erp/internal/validation"

	"gorm.io/gorm"
)

type InventoryHandler struct {
	DB *gorm.DB
}

func NewInventoryHandler(db *gorm.DB) *InventoryHandler { return &InventoryHandler{DB: db} }

type inventoryInput struct {
	Name          string     `json:"name"`
	Specifics     string     `json:"specifics"`
	SKU           *string    `json:"sku"`
	CategoryID    uint       `json:"category_id"`
	Quantity      int        `json:"quantity"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	PurchasePrice float64    `json:"purchase_price"`
	MRP           float64    `json:"mrp"`
	Discount      *float64   `json:"discount"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	Supplier      string     `json:"supplier"`
}

// List supports category, free-text search, expiring-within-days and expired
// filters, composed as chained parameterized conditions.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dbq := h.DB.Model(&models.InventoryItem{})
	if cat := q.Get("category_id"); cat != "" {
		if id, err := strconv.Atoi(cat); err == nil && id > 0 {
			dbq = dbq.Where("category_id = ?", id)
		}
	}
	if search := strings.TrimSpace(q.Get("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(sku) LIKE ? OR lower(supplier) LIKE ?", like, like, like)
	}
	if days := q.Get("expiring_days"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			now := time.Now()
			cutoff := now.AddDate(0, 0, n)
			dbq = dbq.Where("expiry_date IS NOT NULL AND expiry_date > ? AND expiry_date <= ?", now, cutoff)
		}
	}
	if q.Get("expired") == "true" {
		dbq = dbq.Where("expiry_date IS NOT NULL AND expiry_date <= ?", time.Now())
	}
	if max := q.Get("max_quantity"); max != "" {
		if n, err := strconv.Atoi(max); err == nil && n >= 0 {
			dbq = dbq.Where("quantity <= ?", n)
		}
	}
	var items []models.InventoryItem
	if err := dbq.Order("name asc").Find(&items).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var item models.InventoryItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Inventory item not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in inventoryInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.RequiredID("category_id", in.CategoryID, v)
	validation.PositiveFloat("purchase_price", in.PurchasePrice, v)
	validation.PositiveFloat("mrp", in.MRP, v)
	if in.Quantity < 0 {
		v["quantity"] = "must_be_positive"
	}
	if in.Discount != nil {
		validation.RangeFloat("discount", *in.Discount, 0, 100, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var catCount int64
	if err := h.DB.Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&catCount).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if catCount == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Category does not exist", nil)
		return
	}
	if in.SKU != nil && strings.TrimSpace(*in.SKU) != "" {
		sku := strings.TrimSpace(*in.SKU)
		in.SKU = &sku
		var dup int64
		if err := h.DB.Model(&models.InventoryItem{}).Where("sku = ?", sku).Count(&dup).Error; err != nil {
			writeServiceError(w, err)
			return
		}
		if dup > 0 {
			httpx.JSONError(w, http.StatusBadRequest, "SKU already exists", nil)
			return
		}
	} else {
		in.SKU = nil
	}
	discount := services.DefaultDiscount(in.MRP, in.PurchasePrice)
	if in.Discount != nil {
		discount = *in.Discount
	}
	item := models.InventoryItem{
		Name:          strings.TrimSpace(in.Name),
		Specifics:     in.Specifics,
		SKU:           in.SKU,
		CategoryID:    in.CategoryID,
		Quantity:      in.Quantity,
		PurchaseDate:  time.Now(),
		PurchasePrice: in.PurchasePrice,
		MRP:           in.MRP,
		Discount:      discount,
		ExpiryDate:    in.ExpiryDate,
		Supplier:      in.Supplier,
	}
	if in.PurchaseDate != nil {
		item.PurchaseDate = *in.PurchaseDate
	}
	if err := h.DB.Create(&item).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var item models.InventoryItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Inventory item not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var in inventoryInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.Name != "" {
		item.Name = strings.TrimSpace(in.Name)
	}
	if in.Specifics != "" {
		item.Specifics = in.Specifics
	}
	if in.CategoryID != 0 && in.CategoryID != item.CategoryID {
		var catCount int64
		if err := h.DB.Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&catCount).Error; err != nil {
			writeServiceError(w, err)
			return
		}
		if catCount == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "Category does not exist", nil)
			return
		}
		item.CategoryID = in.CategoryID
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			item.SKU = nil
		} else {
			var dup int64
			if err := h.DB.Model(&models.InventoryItem{}).Where("sku = ? AND id <> ?", sku, id).Count(&dup).Error; err != nil {
				writeServiceError(w, err)
				return
			}
			if dup > 0 {
				httpx.JSONError(w, http.StatusBadRequest, "SKU already exists", nil)
				return
			}
			item.SKU = &sku
		}
	}
	if in.PurchasePrice > 0 {
		item.PurchasePrice = in.PurchasePrice
	}
	if in.MRP > 0 {
		item.MRP = in.MRP
	}
	if in.Discount != nil {
		if *in.Discount < 0 || *in.Discount > 100 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"discount": "out_of_range"})
			return
		}
		item.Discount = *in.Discount
	}
	if in.PurchaseDate != nil {
		item.PurchaseDate = *in.PurchaseDate
	}
	if in.ExpiryDate != nil {
		item.ExpiryDate = in.ExpiryDate
	}
	if in.Supplier != "" {
		item.Supplier = in.Supplier
	}
	if err := h.DB.Save(&item).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Delete refuses to remove a row that invoice lines or returns still reference,
// reporting how many rows hold the reference.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var item models.InventoryItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Inventory item not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var lineRefs int64
	if err := h.DB.Model(&models.InvoiceItem{}).Where("inventory_id = ?", id).Count(&lineRefs).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if lineRefs > 0 {
		httpx.JSONFields(w, http.StatusBadRequest, "Cannot delete item referenced by invoices", map[string]any{"invoice_items": lineRefs})
		return
	}
	var returnRefs int64
	if err := h.DB.Model(&models.Return{}).Where("inventory_id = ?", id).Count(&returnRefs).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if returnRefs > 0 {
		httpx.JSONFields(w, http.StatusBadRequest, "Cannot delete item referenced by returns", map[string]any{"returns": returnRefs})
		return
	}
	if err := h.DB.Delete(&models.InventoryItem{}, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Quantity applies an add/remove/set adjustment to one row.
func (h *InventoryHandler) Quantity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in struct {
		Quantity  int    `json:"quantity"`
		Operation string `json:"operation"`
	}
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	item, err := services.AdjustQuantity(h.DB, id, in.Quantity, in.Operation)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Stats summarizes the stock: counts, valuation at purchase and retail price,
// low-stock and expiring totals, and a per-category breakdown.
func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var totalItems int64
	if err := h.DB.Model(&models.InventoryItem{}).Count(&totalItems).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var agg struct {
		TotalQuantity int64
		StockValue    float64
		RetailValue   float64
	}
	if err := h.DB.Model(&models.InventoryItem{}).
		Select("COALESCE(SUM(quantity),0) AS total_quantity, COALESCE(SUM(quantity * purchase_price),0) AS stock_value, COALESCE(SUM(quantity * mrp),0) AS retail_value").
		Scan(&agg).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var lowStock int64
	if err := h.DB.Model(&models.InventoryItem{}).Where("quantity <= ?", lowStockThreshold).Count(&lowStock).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	now := time.Now()
	var expiringSoon int64
	if err := h.DB.Model(&models.InventoryItem{}).
		Where("expiry_date IS NOT NULL AND expiry_date > ? AND expiry_date <= ?", now, now.AddDate(0, 0, 30)).
		Count(&expiringSoon).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var expired int64
	if err := h.DB.Model(&models.InventoryItem{}).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", now).
		Count(&expired).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	byCategory := map[string]int64{}
	catRows := []struct {
		Name string
		N    int64
	}{}
	err := h.DB.Table("inventory_items").
		Select("categories.name AS name, COUNT(*) AS n").
		Joins("JOIN categories ON categories.id = inventory_items.category_id").
		Group("categories.name").
		Scan(&catRows).Error
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, row := range catRows {
		byCategory[row.Name] = row.N
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"total_items":      totalItems,
		"total_quantity":   agg.TotalQuantity,
		"stock_value":      agg.StockValue,
		"retail_value":     agg.RetailValue,
		"potential_profit": agg.RetailValue - agg.StockValue,
		"low_stock":        lowStock,
		"expiring_soon":    expiringSoon,
		"expired":          expired,
		"by_category":      byCategory,
	})
}

// lowStockThreshold is the quantity at or below which a row counts as low stock.
const lowStockThreshold = 10

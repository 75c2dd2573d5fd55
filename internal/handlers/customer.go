package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mohit-pareek09/smart-erp/internal/httpx"
	"github.com/mohit-pareek09/smart-erp/internal/models"
	"github.com/mohit-pareek09/smart-erp/internal/validation"

	"gorm.io/gorm"
)

type CustomerHandler struct{ DB *gorm.DB }

func NewCustomerHandler(db *gorm.DB) *CustomerHandler { return &CustomerHandler{DB: db} }

type customerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Customer{})
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(email) LIKE ? OR lower(phone) LIKE ?", like, like, like)
	}
	var customers []models.Customer
	if err := dbq.Order("name asc").Find(&customers).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Customer not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in customerInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Customer{Name: strings.TrimSpace(in.Name), Email: in.Email, Phone: in.Phone, Address: in.Address}
	if err := h.DB.Create(&c).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Customer not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var in customerInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Email != "" {
		c.Email = in.Email
	}
	if in.Phone != "" {
		c.Phone = in.Phone
	}
	if in.Address != "" {
		c.Address = in.Address
	}
	if err := h.DB.Save(&c).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete refuses to remove a customer who still has invoices on record,
// matched by name since invoices carry a denormalized customer_name.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Customer not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var refs int64
	if err := h.DB.Model(&models.Invoice{}).Where("customer_name = ?", c.Name).Count(&refs).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if refs > 0 {
		httpx.JSONFields(w, http.StatusBadRequest, "Cannot delete customer with invoices", map[string]any{"invoices": refs})
		return
	}
	if err := h.DB.Delete(&models.Customer{}, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

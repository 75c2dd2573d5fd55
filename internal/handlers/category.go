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

type CategoryHandler struct{ DB *gorm.DB }

func NewCategoryHandler(db *gorm.DB) *CategoryHandler { return &CategoryHandler{DB: db} }

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if err := h.DB.Order("name asc").Find(&categories).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Category not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var dup int64
	if err := h.DB.Model(&models.Category{}).Where("lower(name) = ?", strings.ToLower(in.Name)).Count(&dup).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if dup > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Category already exists", nil)
		return
	}
	cat := models.Category{Name: in.Name, Description: in.Description}
	if err := h.DB.Create(&cat).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Category not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != cat.Name {
		var dup int64
		if err := h.DB.Model(&models.Category{}).Where("lower(name) = ? AND id <> ?", strings.ToLower(name), id).Count(&dup).Error; err != nil {
			writeServiceError(w, err)
			return
		}
		if dup > 0 {
			httpx.JSONError(w, http.StatusBadRequest, "Category already exists", nil)
			return
		}
		cat.Name = name
	}
	if in.Description != "" {
		cat.Description = in.Description
	}
	if err := h.DB.Save(&cat).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cat)
}

// Delete refuses to remove a category that inventory rows still reference.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Category not found", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	var refs int64
	if err := h.DB.Model(&models.InventoryItem{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	if refs > 0 {
		httpx.JSONFields(w, http.StatusBadRequest, "Cannot delete category with inventory items", map[string]any{"inventory_items": refs})
		return
	}
	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

package api

import (
	"net/http"

	"github.com/finwell/finance-service/internal/domain"
)

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// CreateCategoryHandler creates a new category.
func (h *Handlers) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.service.CreateCategory(r.Context(), userID, req.Name, req.Color, req.Icon)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, category)
}

// ListCategoriesHandler returns all of the user's categories.
func (h *Handlers) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	categories, err := h.service.ListCategories(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

// GetCategoryHandler returns a single category.
func (h *Handlers) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	categoryID, err := pathUUID(r, "categoryID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.service.GetCategory(r.Context(), categoryID, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, category)
}

// UpdateCategoryHandler applies a partial update to a category.
func (h *Handlers) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	categoryID, err := pathUUID(r, "categoryID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var changes domain.CategoryChanges
	if err := decodeJSON(r, &changes); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), categoryID, userID, changes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, category)
}

// DeleteCategoryHandler removes a category, clearing it from transactions.
func (h *Handlers) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	categoryID, err := pathUUID(r, "categoryID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteCategory(r.Context(), categoryID, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedDefaultCategoriesHandler seeds the starter categories for the user.
func (h *Handlers) SeedDefaultCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	created, err := h.service.SeedDefaultCategories(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int{"created": created})
}

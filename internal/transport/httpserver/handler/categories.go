package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	transactionsdomain "budget-tracker-go/internal/domain/transactions"
	"budget-tracker-go/internal/domain/validation"
	"budget-tracker-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"max=50"`
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	categories, err := h.Transactions.ListCategories(r.Context(), user.ID)
	if err != nil {
		h.log.WithContext(r.Context()).InternalError("categories.list: list categories failed", err, "user_id", user.ID)
		writeInternalError(w)
		return
	}

	response := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryResponse(category))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if err := h.validate.Validate(req); err != nil {
		h.writeRequestError(w, "categories.create", err)
		return
	}

	created, err := h.Transactions.CreateCategory(r.Context(), transactionsdomain.CreateCategoryInput{
		UserID: user.ID,
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		if verr, ok := validation.As(err); ok {
			log.BusinessError("categories.create: invalid request", err, "user_id", user.ID)
			writeValidationError(w, verr)
			return
		}
		log.InternalError("categories.create: create category failed", err, "user_id", user.ID)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(*created))
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.TrimSpace(chi.URLParam(r, "id"))
	if categoryID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	removed, err := h.Transactions.DeleteCategory(r.Context(), user.ID, categoryID)
	if err != nil {
		if errors.Is(err, transactionsdomain.ErrCategoryNotFound) {
			log.BusinessError("categories.delete: category not found", err, "user_id", user.ID, "category_id", categoryID)
			writeError(w, http.StatusNotFound, "category_not_found", "category not found")
			return
		}
		log.InternalError("categories.delete: delete category failed", err, "user_id", user.ID, "category_id", categoryID)
		writeInternalError(w)
		return
	}

	log.Info("categories.delete: category deleted", "user_id", user.ID, "category_id", categoryID, "transactions_removed", removed)
	w.WriteHeader(http.StatusNoContent)
}

func toCategoryResponse(category transactionsdomain.Category) categoryResponse {
	return categoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Color:     category.Color,
		CreatedAt: category.CreatedAt,
	}
}

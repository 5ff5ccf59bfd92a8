package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	budgetsdomain "budget-tracker-go/internal/domain/budgets"
	"budget-tracker-go/internal/domain/validation"
	"budget-tracker-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createBudgetRequest struct {
	CategoryID string   `json:"category_id" validate:"required"`
	Amount     *float64 `json:"amount" validate:"required,gt=0"`
	Month      string   `json:"month" validate:"required"`
}

type budgetResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CategoryID string    `json:"category_id"`
	Amount     float64   `json:"amount"`
	Month      string    `json:"month"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type budgetCategoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type budgetViewResponse struct {
	budgetResponse
	Spent      float64                `json:"spent"`
	Percentage int64                  `json:"percentage"`
	Status     string                 `json:"status"`
	Category   budgetCategoryResponse `json:"category"`
}

func (h *Handlers) ListBudgets(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	var filter budgetsdomain.ListFilter
	if value := strings.TrimSpace(r.URL.Query().Get("month")); value != "" {
		month, err := budgetsdomain.ParseMonth(value)
		if err != nil {
			if verr, ok := validation.As(err); ok {
				writeValidationError(w, verr)
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid month")
			return
		}
		filter.Month = &month
	}

	views, err := h.Budgets.ListBudgets(r.Context(), user.ID, filter)
	if err != nil {
		log.InternalError("budgets.list: list budgets failed", err, "user_id", user.ID)
		writeInternalError(w)
		return
	}

	response := make([]budgetViewResponse, 0, len(views))
	for _, view := range views {
		response = append(response, budgetViewResponse{
			budgetResponse: toBudgetResponse(view.Budget),
			Spent:          view.Spent.InexactFloat64(),
			Percentage:     view.Percentage,
			Status:         string(view.Status),
			Category: budgetCategoryResponse{
				ID:    view.Category.ID,
				Name:  view.Category.Name,
				Color: view.Category.Color,
			},
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateBudget(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	var req createBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if err := h.validate.Validate(req); err != nil {
		h.writeRequestError(w, "budgets.create", err)
		return
	}

	created, err := h.Budgets.CreateBudget(r.Context(), budgetsdomain.CreateBudgetInput{
		OwnerID:    user.ID,
		CategoryID: req.CategoryID,
		Amount:     decimal.NewFromFloat(*req.Amount),
		Month:      req.Month,
	})
	if err != nil {
		if verr, ok := validation.As(err); ok {
			log.BusinessError("budgets.create: invalid request", err, "user_id", user.ID)
			writeValidationError(w, verr)
			return
		}
		switch {
		case errors.Is(err, budgetsdomain.ErrCategoryNotFound):
			log.BusinessError("budgets.create: category not found", err, "user_id", user.ID, "category_id", req.CategoryID)
			writeError(w, http.StatusBadRequest, "category_not_found", "Category not found or invalid")
		case errors.Is(err, budgetsdomain.ErrDuplicateBudget):
			log.BusinessError("budgets.create: duplicate budget", err, "user_id", user.ID, "category_id", req.CategoryID, "month", req.Month)
			writeError(w, http.StatusConflict, "budget_exists", "Budget already exists for this category and month")
		default:
			log.InternalError("budgets.create: create budget failed", err, "user_id", user.ID)
			writeInternalError(w)
		}
		return
	}

	log.Info("budgets.create: budget created", "user_id", user.ID, "budget_id", created.ID)
	writeJSON(w, http.StatusCreated, toBudgetResponse(*created))
}

func (h *Handlers) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := strings.TrimSpace(chi.URLParam(r, "id"))
	if budgetID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	if err := h.Budgets.DeleteBudget(r.Context(), user.ID, budgetID); err != nil {
		switch {
		case errors.Is(err, budgetsdomain.ErrBudgetNotFound):
			log.BusinessError("budgets.delete: budget not found", err, "user_id", user.ID, "budget_id", budgetID)
			writeError(w, http.StatusNotFound, "budget_not_found", "Budget not found")
		case errors.Is(err, budgetsdomain.ErrForbidden):
			log.BusinessError("budgets.delete: budget owned by another user", err, "user_id", user.ID, "budget_id", budgetID)
			writeError(w, http.StatusForbidden, "forbidden", "Unauthorized to delete this budget")
		default:
			log.InternalError("budgets.delete: delete budget failed", err, "user_id", user.ID, "budget_id", budgetID)
			writeInternalError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Budget deleted successfully"})
}

func toBudgetResponse(budget budgetsdomain.Budget) budgetResponse {
	return budgetResponse{
		ID:         budget.ID,
		UserID:     budget.UserID,
		CategoryID: budget.CategoryID,
		Amount:     budget.Amount.InexactFloat64(),
		Month:      budgetsdomain.FormatMonth(budget.Month),
		CreatedAt:  budget.CreatedAt,
		UpdatedAt:  budget.UpdatedAt,
	}
}

package handler

import (
	"errors"
	"net/http"

	dashboarddomain "budget-tracker-go/internal/domain/dashboard"
	"budget-tracker-go/internal/transport/httpserver/middleware"
)

type dashboardStatsResponse struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

type dashboardCategoryResponse struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type dashboardDailyResponse struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type dashboardResponse struct {
	Range            string                      `json:"range"`
	TransactionCount int                         `json:"transaction_count"`
	Stats            dashboardStatsResponse      `json:"stats"`
	Categories       []dashboardCategoryResponse `json:"categories"`
	Daily            []dashboardDailyResponse    `json:"daily"`
}

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	rng, err := dashboarddomain.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	summary, err := h.Dashboard.Summary(r.Context(), user.ID, rng)
	if err != nil {
		if errors.Is(err, dashboarddomain.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		h.log.WithContext(r.Context()).InternalError("dashboard.get: build summary failed", err, "user_id", user.ID, "range", rng)
		writeInternalError(w)
		return
	}

	response := dashboardResponse{
		Range:            string(summary.Range),
		TransactionCount: summary.Count,
		Stats: dashboardStatsResponse{
			Income:   summary.Stats.Income.InexactFloat64(),
			Expenses: summary.Stats.Expenses.InexactFloat64(),
			Balance:  summary.Stats.Balance.InexactFloat64(),
		},
		Categories: make([]dashboardCategoryResponse, 0, len(summary.Categories)),
		Daily:      make([]dashboardDailyResponse, 0, len(summary.Daily)),
	}
	for _, slice := range summary.Categories {
		response.Categories = append(response.Categories, dashboardCategoryResponse{
			Name:  slice.Name,
			Value: slice.Value.InexactFloat64(),
			Color: slice.Color,
		})
	}
	for _, point := range summary.Daily {
		response.Daily = append(response.Daily, dashboardDailyResponse{
			Date:    point.Date,
			Income:  point.Income.InexactFloat64(),
			Expense: point.Expense.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

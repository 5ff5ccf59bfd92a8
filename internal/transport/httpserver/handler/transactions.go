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
	"github.com/shopspring/decimal"
)

const maxListLimit = 500

type createTransactionRequest struct {
	CategoryID  string   `json:"category_id" validate:"required"`
	Amount      *float64 `json:"amount" validate:"required,gt=0"`
	Description string   `json:"description" validate:"max=255"`
	Date        string   `json:"date" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=income expense"`
}

type transactionResponse struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

type transactionListResponse struct {
	Items  []transactionResponse `json:"items"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	query := r.URL.Query()
	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return
	}
	limit, err := parseIntParam(query.Get("limit"), 50)
	if err != nil || limit > maxListLimit {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	filter := transactionsdomain.ListFilter{
		Type:       transactionsdomain.Type(strings.TrimSpace(query.Get("type"))),
		CategoryID: strings.TrimSpace(query.Get("category_id")),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	}

	items, total, err := h.Transactions.ListTransactions(r.Context(), user.ID, filter)
	if err != nil {
		if verr, ok := validation.As(err); ok {
			log.BusinessError("transactions.list: invalid filter", err, "user_id", user.ID)
			writeValidationError(w, verr)
			return
		}
		log.InternalError("transactions.list: list transactions failed", err, "user_id", user.ID)
		writeInternalError(w)
		return
	}

	response := transactionListResponse{
		Items:  make([]transactionResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, item := range items {
		response.Items = append(response.Items, toTransactionResponse(item))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if err := h.validate.Validate(req); err != nil {
		h.writeRequestError(w, "transactions.create", err)
		return
	}
	date, err := parseDateRequired(req.Date)
	if err != nil {
		writeValidationError(w, &validation.Error{
			Message: "date must be YYYY-MM-DD",
			Fields:  map[string]string{"date": "must be YYYY-MM-DD"},
		})
		return
	}

	created, err := h.Transactions.CreateTransaction(r.Context(), transactionsdomain.CreateTransactionInput{
		UserID:      user.ID,
		CategoryID:  strings.TrimSpace(req.CategoryID),
		Amount:      decimal.NewFromFloat(*req.Amount),
		Description: req.Description,
		Date:        date,
		Type:        transactionsdomain.Type(req.Type),
	})
	if err != nil {
		if verr, ok := validation.As(err); ok {
			log.BusinessError("transactions.create: invalid request", err, "user_id", user.ID)
			writeValidationError(w, verr)
			return
		}
		if errors.Is(err, transactionsdomain.ErrCategoryNotFound) {
			log.BusinessError("transactions.create: category not found", err, "user_id", user.ID, "category_id", req.CategoryID)
			writeError(w, http.StatusBadRequest, "category_not_found", "category not found or invalid")
			return
		}
		log.InternalError("transactions.create: create transaction failed", err, "user_id", user.ID)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(*created))
}

func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := strings.TrimSpace(chi.URLParam(r, "id"))
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	log := h.log.WithContext(r.Context())

	if err := h.Transactions.DeleteTransaction(r.Context(), user.ID, transactionID); err != nil {
		if errors.Is(err, transactionsdomain.ErrTransactionNotFound) {
			log.BusinessError("transactions.delete: transaction not found", err, "user_id", user.ID, "transaction_id", transactionID)
			writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
			return
		}
		log.InternalError("transactions.delete: delete transaction failed", err, "user_id", user.ID, "transaction_id", transactionID)
		writeInternalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toTransactionResponse(tx transactionsdomain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		Amount:      tx.Amount.InexactFloat64(),
		Description: tx.Description,
		Date:        tx.Date.Format(dateLayout),
		Type:        string(tx.Type),
		CreatedAt:   tx.CreatedAt,
	}
}

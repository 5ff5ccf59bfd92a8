package budgets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	CategoryExists(ctx context.Context, userID, categoryID string) (bool, error)
	// CreateBudget returns ErrDuplicateBudget when the owner already has a
	// budget for the category and month.
	CreateBudget(ctx context.Context, budget *Budget) error
	ListBudgets(ctx context.Context, userID string, filter ListFilter) ([]BudgetWithCategory, error)
	GetBudgetByID(ctx context.Context, budgetID string) (*Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) (bool, error)
}

type SpendReader interface {
	// SumExpenses totals expense transactions dated in [from, to).
	SumExpenses(ctx context.Context, userID, categoryID string, from, to time.Time) (decimal.Decimal, error)
}

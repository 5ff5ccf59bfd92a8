package budgets

import "errors"

var (
	ErrBudgetNotFound    = errors.New("budget not found")
	ErrForbidden         = errors.New("budget belongs to another user")
	ErrDuplicateBudget   = errors.New("budget already exists for this category and month")
	ErrCategoryNotFound  = errors.New("category not found or invalid")
	ErrDivisionUndefined = errors.New("budget amount must be positive to compute a percentage")
)

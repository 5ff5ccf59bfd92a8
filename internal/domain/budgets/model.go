package budgets

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "WARNING"
)

// WarningThreshold is the percentage at which a budget turns WARNING.
const WarningThreshold = 80

const MonthLayout = "2006-01"

// Budget caps expense spending for one category in one calendar month.
// Month is always the first day of that month.
type Budget struct {
	ID         string          `gorm:"type:uuid;primaryKey"`
	UserID     string          `gorm:"type:uuid;index;not null"`
	CategoryID string          `gorm:"type:uuid;index;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Month      time.Time       `gorm:"type:date;not null"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

type CategoryRef struct {
	ID    string
	Name  string
	Color string
}

// BudgetWithCategory is a stored budget joined with its category.
type BudgetWithCategory struct {
	Budget
	Category CategoryRef
}

type Spend struct {
	Spent      decimal.Decimal
	Percentage int64
	Status     Status
}

// BudgetView is a budget with its derived spend. It is never persisted.
type BudgetView struct {
	Budget
	Category CategoryRef
	Spend
}

type ListFilter struct {
	Month *time.Time
}

type CreateBudgetInput struct {
	OwnerID    string
	CategoryID string
	Amount     decimal.Decimal
	Month      string
}

package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

type Category struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	Color     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Transaction is immutable once stored; it can only be deleted.
type Transaction struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	UserID      string          `gorm:"type:uuid;index;not null"`
	CategoryID  string          `gorm:"type:uuid;index;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description string          `gorm:"not null"`
	Date        time.Time       `gorm:"column:transaction_date;type:date;not null"`
	Type        Type            `gorm:"type:text;not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

type ListFilter struct {
	Type       Type
	CategoryID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type CreateCategoryInput struct {
	UserID string
	Name   string
	Color  string
}

type CreateTransactionInput struct {
	UserID      string
	CategoryID  string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Type        Type
}

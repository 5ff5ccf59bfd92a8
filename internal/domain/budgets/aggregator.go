package budgets

import (
	"context"
	"fmt"
	"time"

	"budget-tracker-go/pkg/logger"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregator derives how much of a budget has been consumed. It only reads
// and is safe for concurrent use.
type Aggregator struct {
	spend  SpendReader
	strict bool
	log    logger.Logger
}

// NewAggregator builds an Aggregator. In strict mode a failed spend read is
// returned to the caller; otherwise the spend is reported as zero and logged.
func NewAggregator(spend SpendReader, strict bool, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{spend: spend, strict: strict, log: log}
}

// MonthWindow returns the half-open window [start, end) of the calendar
// month containing monthStart. end is always the 1st of the next month.
func MonthWindow(monthStart time.Time) (time.Time, time.Time) {
	y, m, _ := monthStart.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, monthStart.Location())
	return start, start.AddDate(0, 1, 0)
}

func (a *Aggregator) ComputeSpend(ctx context.Context, ownerID, categoryID string, monthStart time.Time, budgetAmount decimal.Decimal) (Spend, error) {
	if !budgetAmount.IsPositive() {
		return Spend{}, ErrDivisionUndefined
	}

	start, end := MonthWindow(monthStart)
	spent, err := a.spend.SumExpenses(ctx, ownerID, categoryID, start, end)
	if err != nil {
		if a.strict || ctx.Err() != nil {
			return Spend{}, fmt.Errorf("sum expenses: %w", err)
		}
		a.log.InternalError("budgets.aggregate: spend read failed, reporting zero", err,
			"user_id", ownerID,
			"category_id", categoryID,
			"month", start.Format(MonthLayout),
		)
		spent = decimal.Zero
	}

	percentage := Percentage(spent, budgetAmount)
	return Spend{
		Spent:      spent,
		Percentage: percentage,
		Status:     StatusFor(percentage),
	}, nil
}

// Percentage is spent/amount*100 rounded half-up to an integer.
// amount must be positive.
func Percentage(spent, amount decimal.Decimal) int64 {
	return spent.Mul(hundred).DivRound(amount, 0).IntPart()
}

func StatusFor(percentage int64) Status {
	if percentage >= WarningThreshold {
		return StatusWarning
	}
	return StatusOK
}

// Package dashboard derives display aggregates from a transaction list.
// Every function here is pure.
package dashboard

import (
	"errors"
	"sort"
	"strings"
	"time"

	"budget-tracker-go/internal/domain/transactions"
	"github.com/shopspring/decimal"
)

type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"

	DefaultRange = RangeMonth
)

const (
	UncategorizedName = "Uncategorized"
	DateLayout        = "2006-01-02"
)

var ErrInvalidRange = errors.New("range must be one of: week month all")

var palette = []string{
	"#ef4444", "#f97316", "#f59e0b", "#eab308", "#84cc16", "#22c55e",
	"#10b981", "#14b8a6", "#06b6d4", "#0ea5e9", "#3b82f6", "#6366f1",
	"#8b5cf6", "#a855f7", "#d946ef", "#ec4899",
}

type Stats struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

type CategorySlice struct {
	Name  string
	Value decimal.Decimal
	Color string
}

type DailyPoint struct {
	Date    string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type Summary struct {
	Range      Range
	Stats      Stats
	Categories []CategorySlice
	Daily      []DailyPoint
	Count      int
}

func ParseRange(value string) (Range, error) {
	switch Range(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return DefaultRange, nil
	case RangeWeek:
		return RangeWeek, nil
	case RangeMonth:
		return RangeMonth, nil
	case RangeAll:
		return RangeAll, nil
	default:
		return "", ErrInvalidRange
	}
}

// FilterByTimeRange keeps transactions dated within [start, now], both ends
// inclusive. week starts seven days back, month one calendar month back.
func FilterByTimeRange(txs []transactions.Transaction, rng Range, now time.Time) ([]transactions.Transaction, error) {
	var start time.Time
	switch rng {
	case RangeAll:
		return append([]transactions.Transaction(nil), txs...), nil
	case RangeWeek:
		start = now.AddDate(0, 0, -7)
	case RangeMonth:
		start = now.AddDate(0, -1, 0)
	default:
		return nil, ErrInvalidRange
	}

	filtered := make([]transactions.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(now) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered, nil
}

func ComputeStats(txs []transactions.Transaction) Stats {
	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case transactions.TypeIncome:
			income = income.Add(tx.Amount)
		case transactions.TypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return Stats{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
}

// GroupByCategory sums expenses per category name in first-seen order.
func GroupByCategory(txs []transactions.Transaction, categories []transactions.Category) []CategorySlice {
	byID := make(map[string]transactions.Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}

	slices := make([]CategorySlice, 0)
	index := make(map[string]int)
	for _, tx := range txs {
		if tx.Type != transactions.TypeExpense {
			continue
		}

		name, color := UncategorizedName, ""
		if category, ok := byID[tx.CategoryID]; ok && category.Name != "" {
			name, color = category.Name, category.Color
		}

		if i, ok := index[name]; ok {
			slices[i].Value = slices[i].Value.Add(tx.Amount)
			continue
		}
		if color == "" {
			color = palette[len(slices)%len(palette)]
		}
		index[name] = len(slices)
		slices = append(slices, CategorySlice{Name: name, Value: tx.Amount, Color: color})
	}
	return slices
}

// BucketByDay totals income and expense per calendar day, ascending by date.
// Anything that is not income counts as expense.
func BucketByDay(txs []transactions.Transaction) []DailyPoint {
	byDate := make(map[string]*DailyPoint)
	for _, tx := range txs {
		key := tx.Date.Format(DateLayout)
		point, ok := byDate[key]
		if !ok {
			point = &DailyPoint{Date: key, Income: decimal.Zero, Expense: decimal.Zero}
			byDate[key] = point
		}
		if tx.Type == transactions.TypeIncome {
			point.Income = point.Income.Add(tx.Amount)
		} else {
			point.Expense = point.Expense.Add(tx.Amount)
		}
	}

	points := make([]DailyPoint, 0, len(byDate))
	for _, point := range byDate {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

func Build(txs []transactions.Transaction, categories []transactions.Category, rng Range, now time.Time) (Summary, error) {
	filtered, err := FilterByTimeRange(txs, rng, now)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Range:      rng,
		Stats:      ComputeStats(filtered),
		Categories: GroupByCategory(filtered, categories),
		Daily:      BucketByDay(filtered),
		Count:      len(filtered),
	}, nil
}

package budgets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"budget-tracker-go/internal/domain/validation"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultAggregateConcurrency = 4

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type Service struct {
	repo        Repository
	aggregator  *Aggregator
	concurrency int
}

func NewService(repo Repository, aggregator *Aggregator, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = defaultAggregateConcurrency
	}
	return &Service{repo: repo, aggregator: aggregator, concurrency: concurrency}
}

func (s *Service) CreateBudget(ctx context.Context, input CreateBudgetInput) (*Budget, error) {
	categoryID := strings.TrimSpace(input.CategoryID)
	if categoryID == "" {
		return nil, validation.NewFieldError("category_id", "is required")
	}
	amount, err := validation.Amount(input.Amount)
	if err != nil {
		return nil, err
	}
	month, err := ParseMonth(input.Month)
	if err != nil {
		return nil, err
	}

	if !isUUID(categoryID) {
		return nil, ErrCategoryNotFound
	}
	exists, err := s.repo.CategoryExists(ctx, input.OwnerID, categoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	budget := Budget{
		ID:         uuid.NewString(),
		UserID:     input.OwnerID,
		CategoryID: categoryID,
		Amount:     amount,
		Month:      month,
	}
	if err := s.repo.CreateBudget(ctx, &budget); err != nil {
		return nil, err
	}

	return &budget, nil
}

// ListBudgets returns the owner's budgets, most recent month first, each
// with its spend attached. Order is preserved across the aggregation fan-out.
func (s *Service) ListBudgets(ctx context.Context, ownerID string, filter ListFilter) ([]BudgetView, error) {
	if filter.Month != nil {
		start, _ := MonthWindow(*filter.Month)
		filter.Month = &start
	}

	rows, err := s.repo.ListBudgets(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]BudgetView, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, row := range rows {
		g.Go(func() error {
			spend, err := s.aggregator.ComputeSpend(gctx, ownerID, row.CategoryID, row.Month, row.Amount)
			if err != nil {
				return fmt.Errorf("budget %s: %w", row.ID, err)
			}
			views[i] = BudgetView{Budget: row.Budget, Category: row.Category, Spend: spend}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return views, nil
}

// DeleteBudget tells a missing budget apart from one owned by someone else.
func (s *Service) DeleteBudget(ctx context.Context, ownerID, budgetID string) error {
	if !isUUID(budgetID) {
		return ErrBudgetNotFound
	}

	budget, err := s.repo.GetBudgetByID(ctx, budgetID)
	if err != nil {
		return err
	}
	if budget.UserID != ownerID {
		return ErrForbidden
	}

	deleted, err := s.repo.DeleteBudget(ctx, ownerID, budgetID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBudgetNotFound
	}
	return nil
}

// ParseMonth parses a YYYY-MM month into the UTC first day of that month.
func ParseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, validation.NewFieldError("month", "is required")
	}
	if !monthPattern.MatchString(value) {
		return time.Time{}, validation.NewFieldError("month", "must be in YYYY-MM format")
	}
	month, err := time.Parse(MonthLayout, value)
	if err != nil {
		return time.Time{}, validation.NewFieldError("month", "must be a valid calendar month")
	}
	return month.UTC(), nil
}

func FormatMonth(month time.Time) string {
	return month.Format(MonthLayout)
}

func isUUID(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

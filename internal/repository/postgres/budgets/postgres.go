package budgets

import (
	"context"
	"errors"
	"time"

	budgetsdomain "budget-tracker-go/internal/domain/budgets"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type budgetRow struct {
	budgetsdomain.Budget
	CategoryName  string
	CategoryColor string
}

func (r *PostgresRepository) CategoryExists(ctx context.Context, userID, categoryID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("categories").
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateBudget(ctx context.Context, budget *budgetsdomain.Budget) error {
	err := r.db.WithContext(ctx).Create(budget).Error
	if isUniqueViolation(err) {
		return budgetsdomain.ErrDuplicateBudget
	}
	return err
}

func (r *PostgresRepository) ListBudgets(ctx context.Context, userID string, filter budgetsdomain.ListFilter) ([]budgetsdomain.BudgetWithCategory, error) {
	query := r.db.WithContext(ctx).
		Table("budgets").
		Select("budgets.*, categories.name AS category_name, categories.color AS category_color").
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("budgets.user_id = ?", userID)
	if filter.Month != nil {
		start, end := budgetsdomain.MonthWindow(*filter.Month)
		query = query.Where("budgets.month >= ? AND budgets.month < ?", start, end)
	}

	var rows []budgetRow
	if err := query.Order("budgets.month DESC, budgets.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]budgetsdomain.BudgetWithCategory, 0, len(rows))
	for _, row := range rows {
		items = append(items, budgetsdomain.BudgetWithCategory{
			Budget: row.Budget,
			Category: budgetsdomain.CategoryRef{
				ID:    row.CategoryID,
				Name:  row.CategoryName,
				Color: row.CategoryColor,
			},
		})
	}
	return items, nil
}

func (r *PostgresRepository) GetBudgetByID(ctx context.Context, budgetID string) (*budgetsdomain.Budget, error) {
	var budget budgetsdomain.Budget
	if err := r.db.WithContext(ctx).Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budgetsdomain.ErrBudgetNotFound
		}
		return nil, err
	}
	return &budget, nil
}

func (r *PostgresRepository) DeleteBudget(ctx context.Context, userID, budgetID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&budgetsdomain.Budget{}, "user_id = ? AND id = ?", userID, budgetID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) SumExpenses(ctx context.Context, userID, categoryID string, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total FROM transactions
WHERE user_id = ? AND category_id = ? AND type = 'expense' AND transaction_date >= ? AND transaction_date < ?`,
		userID, categoryID, from, to,
	).Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

package transactions

import (
	"context"

	transactionsdomain "budget-tracker-go/internal/domain/transactions"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(transactionsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListCategories(ctx context.Context, userID string) ([]transactionsdomain.Category, error) {
	var categories []transactionsdomain.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *transactionsdomain.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *PostgresRepository) CategoryExists(ctx context.Context, userID, categoryID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&transactionsdomain.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, userID, categoryID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&transactionsdomain.Category{}, "user_id = ? AND id = ?", userID, categoryID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) DeleteTransactionsByCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&transactionsdomain.Transaction{}, "user_id = ? AND category_id = ?", userID, categoryID)
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, userID string, filter transactionsdomain.ListFilter) ([]transactionsdomain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&transactionsdomain.Transaction{}).Where("user_id = ?", userID)
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("transaction_date desc, created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []transactionsdomain.Transaction
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, transaction *transactionsdomain.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, userID, transactionID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&transactionsdomain.Transaction{}, "user_id = ? AND id = ?", userID, transactionID)
	return result.RowsAffected > 0, result.Error
}

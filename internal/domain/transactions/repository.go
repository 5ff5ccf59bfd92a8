package transactions

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListCategories(ctx context.Context, userID string) ([]Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	CategoryExists(ctx context.Context, userID, categoryID string) (bool, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) (bool, error)
	DeleteTransactionsByCategory(ctx context.Context, userID, categoryID string) (int64, error)
	ListTransactions(ctx context.Context, userID string, filter ListFilter) ([]Transaction, int64, error)
	CreateTransaction(ctx context.Context, transaction *Transaction) error
	DeleteTransaction(ctx context.Context, userID, transactionID string) (bool, error)
}

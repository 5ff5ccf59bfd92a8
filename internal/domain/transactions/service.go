package transactions

import (
	"context"
	"strings"
	"time"

	"budget-tracker-go/internal/domain/validation"
	"github.com/google/uuid"
)

const (
	maxNameLength        = 50
	maxColorLength       = 50
	maxDescriptionLength = 255
)

type Service struct {
	repo     Repository
	cache    CategoriesCache
	cacheTTL time.Duration
}

func NewService(repo Repository, cache CategoriesCache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopCategoriesCache{}
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *Service) ListCategories(ctx context.Context, userID string) ([]Category, error) {
	if cached, ok := s.cache.GetByUserID(userID); ok {
		return cached, nil
	}

	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []Category{}
	}

	s.cache.SetByUserID(userID, categories, s.cacheTTL)
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validation.NewFieldError("name", "is required")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, validation.NewFieldError("name", "must not exceed 50 characters")
	}
	color := strings.TrimSpace(input.Color)
	if len([]rune(color)) > maxColorLength {
		return nil, validation.NewFieldError("color", "must not exceed 50 characters")
	}

	category := Category{
		ID:     uuid.NewString(),
		UserID: input.UserID,
		Name:   name,
		Color:  color,
	}
	if err := s.repo.CreateCategory(ctx, &category); err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(input.UserID)
	return &category, nil
}

// DeleteCategory removes the category and every transaction filed under it.
// It returns how many transactions went with it.
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	if !isUUID(categoryID) {
		return 0, ErrCategoryNotFound
	}

	var removed int64
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.CategoryExists(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCategoryNotFound
		}

		removed, err = tx.DeleteTransactionsByCategory(ctx, userID, categoryID)
		if err != nil {
			return err
		}

		deleted, err := tx.DeleteCategory(ctx, userID, categoryID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.cache.DeleteByUserID(userID)
	return removed, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID string, filter ListFilter) ([]Transaction, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, validation.NewFieldError("type", "must be one of: income expense")
	}
	if filter.CategoryID != "" && !isUUID(filter.CategoryID) {
		return nil, 0, validation.NewFieldError("category_id", "must be a valid UUID")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, validation.NewFieldError("from", "must not be after to")
	}

	items, total, err := s.repo.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []Transaction{}
	}
	return items, total, nil
}

// AllTransactions returns the owner's full history, newest first.
func (s *Service) AllTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	items, _, err := s.ListTransactions(ctx, userID, ListFilter{})
	return items, err
}

func (s *Service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*Transaction, error) {
	amount, err := validation.Amount(input.Amount)
	if err != nil {
		return nil, err
	}
	if !input.Type.Valid() {
		return nil, validation.NewFieldError("type", "must be one of: income expense")
	}
	if input.Date.IsZero() {
		return nil, validation.NewFieldError("date", "is required")
	}
	description := strings.TrimSpace(input.Description)
	if len([]rune(description)) > maxDescriptionLength {
		return nil, validation.NewFieldError("description", "must not exceed 255 characters")
	}
	if !isUUID(input.CategoryID) {
		return nil, ErrCategoryNotFound
	}

	exists, err := s.repo.CategoryExists(ctx, input.UserID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	y, m, d := input.Date.Date()
	transaction := Transaction{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		CategoryID:  input.CategoryID,
		Amount:      amount,
		Description: description,
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Type:        input.Type,
	}
	if err := s.repo.CreateTransaction(ctx, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if !isUUID(transactionID) {
		return ErrTransactionNotFound
	}
	deleted, err := s.repo.DeleteTransaction(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTransactionNotFound
	}
	return nil
}

func isUUID(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	budgetsdomain "budget-tracker-go/internal/domain/budgets"
	transactionsdomain "budget-tracker-go/internal/domain/transactions"
	userdomain "budget-tracker-go/internal/domain/user"
	"budget-tracker-go/internal/identity"
	"github.com/shopspring/decimal"
)

// memStore backs every service in handler tests.
type memStore struct {
	mu           sync.Mutex
	categories   map[string]transactionsdomain.Category
	transactions map[string]transactionsdomain.Transaction
	budgets      map[string]budgetsdomain.Budget
	profiles     map[string]userdomain.Profile
}

func newMemStore() *memStore {
	return &memStore{
		categories:   make(map[string]transactionsdomain.Category),
		transactions: make(map[string]transactionsdomain.Transaction),
		budgets:      make(map[string]budgetsdomain.Budget),
		profiles:     make(map[string]userdomain.Profile),
	}
}

func (s *memStore) Transaction(ctx context.Context, fn func(transactionsdomain.Repository) error) error {
	return fn(s)
}

func (s *memStore) ListCategories(ctx context.Context, userID string) ([]transactionsdomain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]transactionsdomain.Category, 0)
	for _, category := range s.categories {
		if category.UserID == userID {
			items = append(items, category)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *memStore) CreateCategory(ctx context.Context, category *transactionsdomain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.ID] = *category
	return nil
}

func (s *memStore) CategoryExists(ctx context.Context, userID, categoryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.categories[categoryID]
	return ok && category.UserID == userID, nil
}

func (s *memStore) DeleteCategory(ctx context.Context, userID, categoryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.categories[categoryID]
	if !ok || category.UserID != userID {
		return false, nil
	}
	delete(s.categories, categoryID)
	return true, nil
}

func (s *memStore) DeleteTransactionsByCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, tx := range s.transactions {
		if tx.UserID == userID && tx.CategoryID == categoryID {
			delete(s.transactions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *memStore) ListTransactions(ctx context.Context, userID string, filter transactionsdomain.ListFilter) ([]transactionsdomain.Transaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]transactionsdomain.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		items = append(items, tx)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
	total := int64(len(items))
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items, total, nil
}

func (s *memStore) CreateTransaction(ctx context.Context, tx *transactionsdomain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *memStore) DeleteTransaction(ctx context.Context, userID, transactionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[transactionID]
	if !ok || tx.UserID != userID {
		return false, nil
	}
	delete(s.transactions, transactionID)
	return true, nil
}

func (s *memStore) CreateBudget(ctx context.Context, budget *budgetsdomain.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets {
		if existing.UserID == budget.UserID && existing.CategoryID == budget.CategoryID && existing.Month.Equal(budget.Month) {
			return budgetsdomain.ErrDuplicateBudget
		}
	}
	s.budgets[budget.ID] = *budget
	return nil
}

func (s *memStore) ListBudgets(ctx context.Context, userID string, filter budgetsdomain.ListFilter) ([]budgetsdomain.BudgetWithCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]budgetsdomain.BudgetWithCategory, 0)
	for _, budget := range s.budgets {
		if budget.UserID != userID {
			continue
		}
		if filter.Month != nil && !budget.Month.Equal(*filter.Month) {
			continue
		}
		category := s.categories[budget.CategoryID]
		items = append(items, budgetsdomain.BudgetWithCategory{
			Budget:   budget,
			Category: budgetsdomain.CategoryRef{ID: category.ID, Name: category.Name, Color: category.Color},
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Month.After(items[j].Month) })
	return items, nil
}

func (s *memStore) GetBudgetByID(ctx context.Context, budgetID string) (*budgetsdomain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	budget, ok := s.budgets[budgetID]
	if !ok {
		return nil, budgetsdomain.ErrBudgetNotFound
	}
	return &budget, nil
}

func (s *memStore) DeleteBudget(ctx context.Context, userID, budgetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	budget, ok := s.budgets[budgetID]
	if !ok || budget.UserID != userID {
		return false, nil
	}
	delete(s.budgets, budgetID)
	return true, nil
}

func (s *memStore) SumExpenses(ctx context.Context, userID, categoryID string, from, to time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, tx := range s.transactions {
		if tx.UserID != userID || tx.CategoryID != categoryID || tx.Type != transactionsdomain.TypeExpense {
			continue
		}
		if tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func (s *memStore) UpsertProfile(ctx context.Context, profile *userdomain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *memStore) GetProfile(ctx context.Context, userID string) (*userdomain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, userdomain.ErrProfileNotFound
	}
	return &profile, nil
}

type fakeIdentity struct {
	signUpErr error
	signedOut []string
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, fullName string) (*identity.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &identity.User{ID: "new-user-id", Email: email, FullName: fullName}, nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	if password != "correct-horse" {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.Session{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		TokenType:    "bearer",
		ExpiresIn:    3600,
		User:         identity.User{ID: "user-1", Email: email},
	}, nil
}

func (f *fakeIdentity) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	if refreshToken != "rt-1" {
		return nil, identity.ErrUnauthenticated
	}
	return &identity.Session{AccessToken: "at-2", RefreshToken: "rt-2", TokenType: "bearer"}, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context, accessToken string) error {
	f.signedOut = append(f.signedOut, accessToken)
	return nil
}

package budgets

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ownerID    = "aaaaaaaa-0000-0000-0000-000000000001"
	strangerID = "bbbbbbbb-0000-0000-0000-000000000002"
	foodID     = "11111111-1111-1111-1111-111111111111"
	rentID     = "22222222-2222-2222-2222-222222222222"
	foreignID  = "33333333-3333-3333-3333-333333333333"
)

type fakeCategory struct {
	ownerID string
	ref     CategoryRef
}

type fakeRepo struct {
	mu         sync.Mutex
	categories map[string]fakeCategory
	budgets    map[string]*Budget
	seq        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories: map[string]fakeCategory{
			foodID:    {ownerID: ownerID, ref: CategoryRef{ID: foodID, Name: "Food", Color: "#f00"}},
			rentID:    {ownerID: ownerID, ref: CategoryRef{ID: rentID, Name: "Rent", Color: "#0f0"}},
			foreignID: {ownerID: strangerID, ref: CategoryRef{ID: foreignID, Name: "Theirs"}},
		},
		budgets: make(map[string]*Budget),
	}
}

func (r *fakeRepo) CategoryExists(ctx context.Context, userID, categoryID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[categoryID]
	return ok && category.ownerID == userID, nil
}

func (r *fakeRepo) CreateBudget(ctx context.Context, budget *Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.budgets {
		if existing.UserID == budget.UserID && existing.CategoryID == budget.CategoryID && existing.Month.Equal(budget.Month) {
			return ErrDuplicateBudget
		}
	}
	r.seq++
	budget.CreatedAt = time.Date(2024, time.January, 1, 0, 0, r.seq, 0, time.UTC)
	budget.UpdatedAt = budget.CreatedAt
	stored := *budget
	r.budgets[budget.ID] = &stored
	return nil
}

func (r *fakeRepo) ListBudgets(ctx context.Context, userID string, filter ListFilter) ([]BudgetWithCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]BudgetWithCategory, 0)
	for _, budget := range r.budgets {
		if budget.UserID != userID {
			continue
		}
		if filter.Month != nil {
			start, end := MonthWindow(*filter.Month)
			if budget.Month.Before(start) || !budget.Month.Before(end) {
				continue
			}
		}
		items = append(items, BudgetWithCategory{Budget: *budget, Category: r.categories[budget.CategoryID].ref})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Month.Equal(items[j].Month) {
			return items[i].Month.After(items[j].Month)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *fakeRepo) GetBudgetByID(ctx context.Context, budgetID string) (*Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	budget, ok := r.budgets[budgetID]
	if !ok {
		return nil, ErrBudgetNotFound
	}
	copied := *budget
	return &copied, nil
}

func (r *fakeRepo) DeleteBudget(ctx context.Context, userID, budgetID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	budget, ok := r.budgets[budgetID]
	if !ok || budget.UserID != userID {
		return false, nil
	}
	delete(r.budgets, budgetID)
	return true, nil
}

type fakeTransaction struct {
	ownerID    string
	categoryID string
	amount     decimal.Decimal
	date       time.Time
	expense    bool
}

type fakeSpend struct {
	mu           sync.Mutex
	transactions []fakeTransaction
	err          error
	calls        int
}

func (f *fakeSpend) add(owner, category, amount string, date time.Time, expense bool) {
	f.transactions = append(f.transactions, fakeTransaction{
		ownerID:    owner,
		categoryID: category,
		amount:     decimal.RequireFromString(amount),
		date:       date,
		expense:    expense,
	})
}

func (f *fakeSpend) SumExpenses(ctx context.Context, userID, categoryID string, from, to time.Time) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	total := decimal.Zero
	for _, tx := range f.transactions {
		if tx.ownerID != userID || tx.categoryID != categoryID || !tx.expense {
			continue
		}
		if tx.date.Before(from) || !tx.date.Before(to) {
			continue
		}
		total = total.Add(tx.amount)
	}
	return total, nil
}

var errStoreDown = errors.New("store unavailable")

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

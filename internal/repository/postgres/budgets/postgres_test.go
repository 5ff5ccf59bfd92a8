package budgets

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	budgetsdomain "budget-tracker-go/internal/domain/budgets"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	ownerID    = "aaaaaaaa-0000-0000-0000-000000000001"
	categoryID = "11111111-1111-1111-1111-111111111111"
	budgetID   = "99999999-9999-9999-9999-999999999999"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewPostgres(db), mock
}

func TestCreateBudgetMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "budgets"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "budgets_user_category_month_key"})

	err := repo.CreateBudget(context.Background(), &budgetsdomain.Budget{
		ID:         budgetID,
		UserID:     ownerID,
		CategoryID: categoryID,
		Amount:     decimal.NewFromInt(100),
		Month:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, budgetsdomain.ErrDuplicateBudget)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBudgetPassesOtherErrors(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "budgets"`)).WillReturnError(boom)

	err := repo.CreateBudget(context.Background(), &budgetsdomain.Budget{ID: budgetID, UserID: ownerID, CategoryID: categoryID})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, budgetsdomain.ErrDuplicateBudget)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

func TestSumExpensesUsesHalfOpenWindow(t *testing.T) {
	repo, mock := newMockRepo(t)
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(amount), 0) AS total FROM transactions`)).
		WithArgs(ownerID, categoryID, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("850000.00"))

	total, err := repo.SumExpenses(context.Background(), ownerID, categoryID, from, to)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(850000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBudgetsJoinsCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	month := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "category_id", "amount", "month", "created_at", "updated_at", "category_name", "category_color",
	}).AddRow(budgetID, ownerID, categoryID, "1000000.00", month, created, created, "Food", "#ff0000")

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN categories ON categories.id = budgets.category_id`)).
		WithArgs(ownerID, month, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(rows)

	filter := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	items, err := repo.ListBudgets(context.Background(), ownerID, budgetsdomain.ListFilter{Month: &filter})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, budgetID, items[0].ID)
	assert.Equal(t, month, items[0].Month)
	assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(1000000)))
	assert.Equal(t, budgetsdomain.CategoryRef{ID: categoryID, Name: "Food", Color: "#ff0000"}, items[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBudgetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "budgets" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetBudgetByID(context.Background(), budgetID)
	assert.ErrorIs(t, err, budgetsdomain.ErrBudgetNotFound)
}

func TestDeleteBudgetScopedByOwner(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "budgets" WHERE user_id = $1 AND id = $2`)).
		WithArgs(ownerID, budgetID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "budgets" WHERE user_id = $1 AND id = $2`)).
		WithArgs(ownerID, budgetID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteBudget(context.Background(), ownerID, budgetID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteBudget(context.Background(), ownerID, budgetID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

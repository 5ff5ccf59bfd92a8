package handler

import (
	"context"

	budgetsdomain "budget-tracker-go/internal/domain/budgets"
	dashboarddomain "budget-tracker-go/internal/domain/dashboard"
	transactionsdomain "budget-tracker-go/internal/domain/transactions"
	userdomain "budget-tracker-go/internal/domain/user"
	"budget-tracker-go/internal/domain/validation"
	"budget-tracker-go/internal/identity"
	"budget-tracker-go/pkg/logger"
)

type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, fullName string) (*identity.User, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type Handlers struct {
	Identity     IdentityProvider
	Users        *userdomain.Service
	Transactions *transactionsdomain.Service
	Budgets      *budgetsdomain.Service
	Dashboard    *dashboarddomain.Service
	validate     *validation.Validator
	log          logger.Logger
}

func New(
	identityProvider IdentityProvider,
	users *userdomain.Service,
	transactions *transactionsdomain.Service,
	budgets *budgetsdomain.Service,
	dashboard *dashboarddomain.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Identity:     identityProvider,
		Users:        users,
		Transactions: transactions,
		Budgets:      budgets,
		Dashboard:    dashboard,
		validate:     validation.New(),
		log:          log,
	}
}

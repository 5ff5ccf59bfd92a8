package dashboard

import (
	"context"
	"time"

	"budget-tracker-go/internal/domain/transactions"
)

type Source interface {
	AllTransactions(ctx context.Context, userID string) ([]transactions.Transaction, error)
	ListCategories(ctx context.Context, userID string) ([]transactions.Category, error)
}

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

func (s *Service) Summary(ctx context.Context, ownerID string, rng Range) (Summary, error) {
	txs, err := s.source.AllTransactions(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}
	categories, err := s.source.ListCategories(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}
	return Build(txs, categories, rng, s.now().UTC())
}

package usecase

import (
	"context"

	"conciliador/internal/domain"
)

// BatchRepository defines the interface for loading reconciliation inputs.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go BatchRepository
type BatchRepository interface {
	ReadPayments(ctx context.Context, path string) ([]domain.PaymentRecord, error)
	ReadStatement(ctx context.Context, path string) ([]domain.BankRecord, []domain.BankRecord, error)
	ReadChart(ctx context.Context, path string) ([]domain.ChartEntry, error)
}

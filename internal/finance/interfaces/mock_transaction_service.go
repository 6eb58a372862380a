package interfaces

import (
	"errors"

	"github.com/spendwise-app/spendwise/internal/finance/application"
	"github.com/spendwise-app/spendwise/internal/finance/domain"
)

type MockTransactionService struct {
	transactions []domain.Transaction
	buckets      []application.MonthlyBucket
	createErr    error
	shouldFail   bool
	created      []domain.Transaction
}

func (m *MockTransactionService) CreateTransaction(transaction *domain.Transaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	transaction.ID = "new-transaction-id"
	m.created = append(m.created, *transaction)
	return nil
}

func (m *MockTransactionService) GetUserTransactions(userID string) ([]domain.Transaction, error) {
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	return m.transactions, nil
}

func (m *MockTransactionService) GetMonthlySummary(userID string) ([]application.MonthlyBucket, error) {
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	return m.buckets, nil
}

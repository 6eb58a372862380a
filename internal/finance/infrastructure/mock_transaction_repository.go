package infrastructure

import (
	"github.com/spendwise-app/spendwise/internal/finance/domain"
)

// MockTransactionRepository is an in-memory repository used by service tests.
type MockTransactionRepository struct {
	Transactions []domain.Transaction
	Saved        []domain.Transaction
	SaveErr      error
	FindErr      error
}

func (m *MockTransactionRepository) Save(transaction domain.Transaction) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, transaction)
	m.Transactions = append(m.Transactions, transaction)
	return nil
}

func (m *MockTransactionRepository) FindByUser(userID string) ([]domain.Transaction, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var transactions []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID {
			transactions = append(transactions, transaction)
		}
	}
	return transactions, nil
}

package application

import (
	"github.com/google/uuid"
	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

type TransactionService struct {
	repo               domain.TransactionRepository
	categories         *CategoryService
	requireSubCategory bool
}

func NewTransactionService(repo domain.TransactionRepository, categories *CategoryService, requireSubCategory bool) *TransactionService {
	return &TransactionService{
		repo:               repo,
		categories:         categories,
		requireSubCategory: requireSubCategory,
	}
}

// CreateTransaction validates and persists a new transaction. The selected
// category and sub-category are re-checked against what the user actually
// owns at the moment of the write, so a selection left over from a different
// category (or forged by the client) is rejected instead of stored.
func (s *TransactionService) CreateTransaction(transaction *domain.Transaction) error {
	transaction.RoundToTwoDecimalPlaces()

	if err := transaction.Validate(s.requireSubCategory); err != nil {
		return err
	}

	ok, err := s.categories.DoesCategoryExist(transaction.CategoryID, transaction.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return financeErrors.ErrInvalidCategory
	}

	if transaction.SubCategoryID != nil {
		belongs, err := s.categories.DoesSubCategoryBelong(*transaction.SubCategoryID, transaction.CategoryID, transaction.UserID)
		if err != nil {
			return err
		}
		if !belongs {
			return financeErrors.ErrSubCategoryMismatch
		}
	}

	transaction.ID = uuid.NewString()
	return s.repo.Save(*transaction)
}

func (s *TransactionService) GetUserTransactions(userID string) ([]domain.Transaction, error) {
	transactions, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

func (s *TransactionService) GetMonthlySummary(userID string) ([]MonthlyBucket, error) {
	transactions, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	return SummarizeByMonth(transactions), nil
}

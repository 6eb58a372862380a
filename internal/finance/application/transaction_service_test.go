package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
	"github.com/spendwise-app/spendwise/internal/finance/infrastructure"
)

func newTestTransactionService(categoryRepo *infrastructure.MockCategoryRepository, transactionRepo *infrastructure.MockTransactionRepository, requireSubCategory bool) *TransactionService {
	return NewTransactionService(transactionRepo, NewCategoryService(categoryRepo), requireSubCategory)
}

func validTransaction() domain.Transaction {
	return domain.Transaction{
		UserID:      "user-1",
		Amount:      amount("25.999"),
		Type:        domain.TypeExpense,
		CategoryID:  "cat-1",
		Date:        dateAt(2025, time.April, 12),
		Description: "Groceries",
	}
}

func ownedCategories() *infrastructure.MockCategoryRepository {
	return &infrastructure.MockCategoryRepository{
		Categories: []domain.Category{
			{ID: "cat-1", UserID: "user-1", GroupName: "Essentials", Name: "Food"},
		},
		SubCategories: []domain.SubCategory{
			{ID: "sub-1", UserID: "user-1", CategoryID: "cat-1", Name: "Restaurants"},
			{ID: "sub-2", UserID: "user-1", CategoryID: "cat-2", Name: "Fuel"},
		},
	}
}

func TestCreateTransaction_RoundsAndAssignsID(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	transaction := validTransaction()
	err := service.CreateTransaction(&transaction)

	assert.NoError(t, err)
	assert.NotEmpty(t, transaction.ID)
	assert.True(t, transaction.Amount.Equal(amount("26.00")))
	assert.Len(t, transactionRepo.Saved, 1)
	assert.Equal(t, transaction.ID, transactionRepo.Saved[0].ID)
}

func TestCreateTransaction_RejectsNonPositiveAmount(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	transaction := validTransaction()
	transaction.Amount = amount("0")
	err := service.CreateTransaction(&transaction)

	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, transactionRepo.Saved)

	transaction = validTransaction()
	transaction.Amount = amount("-5")
	err = service.CreateTransaction(&transaction)

	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, transactionRepo.Saved)
}

func TestCreateTransaction_RejectsUnknownType(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	transaction := validTransaction()
	transaction.Type = "transfer"
	err := service.CreateTransaction(&transaction)

	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, transactionRepo.Saved)
}

func TestCreateTransaction_RejectsForeignCategory(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	transaction := validTransaction()
	transaction.UserID = "user-2"
	err := service.CreateTransaction(&transaction)

	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)
	assert.Empty(t, transactionRepo.Saved)
}

func TestCreateTransaction_RejectsSubCategoryOfOtherCategory(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	subCategoryID := "sub-2"
	transaction := validTransaction()
	transaction.SubCategoryID = &subCategoryID
	err := service.CreateTransaction(&transaction)

	assert.ErrorIs(t, err, financeErrors.ErrSubCategoryMismatch)
	assert.Empty(t, transactionRepo.Saved)
}

func TestCreateTransaction_AcceptsMatchingSubCategory(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	subCategoryID := "sub-1"
	transaction := validTransaction()
	transaction.SubCategoryID = &subCategoryID
	err := service.CreateTransaction(&transaction)

	assert.NoError(t, err)
	assert.Len(t, transactionRepo.Saved, 1)
}

func TestCreateTransaction_SubCategoryOptionalByDefault(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	transaction := validTransaction()
	err := service.CreateTransaction(&transaction)

	assert.NoError(t, err)
}

func TestCreateTransaction_SubCategoryRequiredWhenConfigured(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	service := newTestTransactionService(ownedCategories(), transactionRepo, true)

	transaction := validTransaction()
	err := service.CreateTransaction(&transaction)

	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, transactionRepo.Saved)

	subCategoryID := "sub-1"
	transaction = validTransaction()
	transaction.SubCategoryID = &subCategoryID
	err = service.CreateTransaction(&transaction)

	assert.NoError(t, err)
}

func TestGetUserTransactions_EmptyResultIsNotNil(t *testing.T) {
	service := newTestTransactionService(ownedCategories(), &infrastructure.MockTransactionRepository{}, false)

	transactions, err := service.GetUserTransactions("user-1")

	assert.NoError(t, err)
	assert.NotNil(t, transactions)
	assert.Empty(t, transactions)
}

func TestGetMonthlySummary_UsesOnlyOwnTransactions(t *testing.T) {
	transactionRepo := &infrastructure.MockTransactionRepository{
		Transactions: []domain.Transaction{
			{UserID: "user-1", Type: domain.TypeIncome, Amount: amount("100"), Date: dateAt(2025, time.March, 1)},
			{UserID: "user-2", Type: domain.TypeIncome, Amount: amount("900"), Date: dateAt(2025, time.March, 1)},
		},
	}
	service := newTestTransactionService(ownedCategories(), transactionRepo, false)

	buckets, err := service.GetMonthlySummary("user-1")

	assert.NoError(t, err)
	assert.Len(t, buckets, 1)
	assert.True(t, buckets[0].Income.Equal(amount("100")))
}

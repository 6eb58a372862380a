package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendwise-app/spendwise/internal/finance/errors"
)

const (
	TypeExpense = "expense"
	TypeIncome  = "income"
	TypeLend    = "lend"
	TypeBorrow  = "borrow"
)

func IsValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TypeExpense, TypeIncome, TypeLend, TypeBorrow:
		return true
	}
	return false
}

// Transaction is immutable once created: there is no update or delete path.
// Amounts are stored unsigned; income vs expense is carried by Type.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	CategoryID    string          `json:"category_id"`
	SubCategoryID *string         `json:"sub_category_id,omitempty"`
	Date          time.Time       `json:"transaction_date"`
	Description   string          `json:"description,omitempty"`

	// join labels, populated on reads only
	CategoryGroupName string `json:"-"`
	CategoryName      string `json:"-"`
	SubCategoryName   string `json:"-"`
}

type TransactionRepository interface {
	Save(transaction Transaction) error
	FindByUser(userID string) ([]Transaction, error)
}

func (t *Transaction) Validate(requireSubCategory bool) error {
	if !t.Amount.IsPositive() {
		return errors.NewValidationError("Amount must be a positive decimal")
	}
	if !IsValidTransactionType(t.Type) {
		return errors.NewValidationError("Type must be 'expense', 'income', 'lend' or 'borrow'")
	}
	if t.CategoryID == "" {
		return errors.NewValidationError("Category is required")
	}
	if requireSubCategory && (t.SubCategoryID == nil || *t.SubCategoryID == "") {
		return errors.NewValidationError("Sub-category is required")
	}
	if t.Date.IsZero() {
		return errors.NewValidationError("Transaction date is required")
	}
	if len(t.Description) > 200 {
		return errors.NewValidationError("Description must be of length less than 200")
	}
	return nil
}

// RoundToTwoDecimalPlaces normalizes the amount before persisting.
func (t *Transaction) RoundToTwoDecimalPlaces() {
	t.Amount = t.Amount.Round(2)
}

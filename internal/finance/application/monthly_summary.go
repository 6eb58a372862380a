package application

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spendwise-app/spendwise/internal/finance/domain"
)

// MonthlyBucket carries the income and expense totals for one calendar month.
// Month is formatted "YYYY-MM" so that lexicographic order equals
// chronological order.
type MonthlyBucket struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// SummarizeByMonth folds transactions into per-month income and expense
// totals. Lend and borrow entries are left out entirely: they are debts in
// flight, not realized income or spending. Transactions with a zero date are
// skipped. The result covers every month that has at least one counted
// transaction, in ascending month order.
func SummarizeByMonth(transactions []domain.Transaction) []MonthlyBucket {
	buckets := make(map[string]*MonthlyBucket)

	for _, transaction := range transactions {
		if transaction.Date.IsZero() {
			continue
		}

		var income, expense decimal.Decimal
		switch transaction.Type {
		case domain.TypeIncome:
			income = transaction.Amount
		case domain.TypeExpense:
			expense = transaction.Amount
		default:
			continue
		}

		month := transaction.Date.Format("2006-01")
		bucket, ok := buckets[month]
		if !ok {
			bucket = &MonthlyBucket{Month: month}
			buckets[month] = bucket
		}
		bucket.Income = bucket.Income.Add(income)
		bucket.Expense = bucket.Expense.Add(expense)
	}

	result := make([]MonthlyBucket, 0, len(buckets))
	for _, bucket := range buckets {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month < result[j].Month
	})
	return result
}

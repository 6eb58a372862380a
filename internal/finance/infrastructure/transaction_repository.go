package infrastructure

import (
	"database/sql"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Save(transaction domain.Transaction) error {
	_, err := r.db.Exec(
		`INSERT INTO transactions
        (id, user_id, amount, type, category_id, sub_category_id, transaction_date, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		transaction.ID, transaction.UserID, transaction.Amount, transaction.Type,
		transaction.CategoryID, transaction.SubCategoryID, transaction.Date, transaction.Description,
	)
	if err != nil {
		return financeErrors.NewWriteError(err)
	}
	return nil
}

// FindByUser returns the user's transactions newest-first with taxonomy labels
// joined in. The id tiebreak keeps the order deterministic for same-day rows.
func (r *TransactionRepository) FindByUser(userID string) ([]domain.Transaction, error) {
	rows, err := r.db.Query(
		`SELECT t.id, t.user_id, t.amount, t.type, t.category_id, t.sub_category_id,
		        t.transaction_date, t.description,
		        COALESCE(c.group_name, ''), COALESCE(c.name, ''), COALESCE(sc.name, '')
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 LEFT JOIN sub_categories sc ON sc.id = t.sub_category_id
		 WHERE t.user_id = $1
		 ORDER BY t.transaction_date DESC, t.id DESC`,
		userID,
	)
	if err != nil {
		return nil, financeErrors.NewDataAccessError("list transactions", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		var subCategoryID sql.NullString
		if err := rows.Scan(
			&transaction.ID, &transaction.UserID, &transaction.Amount, &transaction.Type,
			&transaction.CategoryID, &subCategoryID, &transaction.Date, &transaction.Description,
			&transaction.CategoryGroupName, &transaction.CategoryName, &transaction.SubCategoryName,
		); err != nil {
			return nil, financeErrors.NewDataAccessError("scan transaction", err)
		}
		if subCategoryID.Valid {
			transaction.SubCategoryID = &subCategoryID.String
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, financeErrors.NewDataAccessError("list transactions", err)
	}
	return transactions, nil
}

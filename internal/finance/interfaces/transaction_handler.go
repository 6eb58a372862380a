package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendwise-app/spendwise/internal/finance/application"
	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

type TransactionServiceInterface interface {
	CreateTransaction(transaction *domain.Transaction) error
	GetUserTransactions(userID string) ([]domain.Transaction, error)
	GetMonthlySummary(userID string) ([]application.MonthlyBucket, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil {
		log.Fatal("RespondJSON function must not be nil")
		return nil
	}
	if respondError == nil {
		log.Fatal("RespondError function must not be nil")
		return nil
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type createTransactionRequest struct {
	Amount        string  `json:"amount"`
	Type          string  `json:"type"`
	CategoryID    string  `json:"category_id"`
	SubCategoryID *string `json:"sub_category_id"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
}

// transactionView is a transaction shaped for the feed: joined category
// labels with fallbacks already applied and the amount fixed to two decimal
// places.
type transactionView struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func newTransactionView(transaction domain.Transaction) transactionView {
	category := transaction.CategoryName
	if category == "" {
		category = "N/A"
	}
	subCategory := transaction.SubCategoryName
	if subCategory == "" {
		subCategory = "-"
	}
	return transactionView{
		ID:          transaction.ID,
		Amount:      transaction.Amount.StringFixed(2),
		Type:        transaction.Type,
		Category:    category,
		SubCategory: subCategory,
		Date:        transaction.Date.Format("2006-01-02"),
		Description: transaction.Description,
	}
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Amount must be a valid number")
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
	}

	transaction := domain.Transaction{
		UserID:        userID,
		Amount:        amount,
		Type:          req.Type,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Date:          date,
		Description:   req.Description,
	}

	if err := h.service.CreateTransaction(&transaction); err != nil {
		if errors.Is(err, financeErrors.ErrInvalidCategory) {
			h.respondError(w, http.StatusBadRequest, "Selected category does not exist")
			return
		}
		if errors.Is(err, financeErrors.ErrSubCategoryMismatch) {
			h.respondError(w, http.StatusBadRequest, "Selected sub-category does not belong to the selected category")
			return
		}
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		fmt.Println("Error during transaction creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    newTransactionView(transaction),
	})
}

func (h *TransactionHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transactions, err := h.service.GetUserTransactions(userID)
	if err != nil {
		fmt.Println("Error during transactions retrieval:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}

	if len(transactions) == 0 {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"message": "No transactions yet.",
			"data":    []transactionView{},
		})
		return
	}

	views := make([]transactionView, len(transactions))
	for i, transaction := range transactions {
		views[i] = newTransactionView(transaction)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions retrieved successfully.",
		"data":    views,
	})
}

// GetMonthlySummary returns the monthly income vs. expense totals shaped for
// a bar chart: one label per month plus two parallel series.
func (h *TransactionHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	buckets, err := h.service.GetMonthlySummary(userID)
	if err != nil {
		fmt.Println("Error during monthly summary retrieval:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve monthly summary")
		return
	}

	labels := make([]string, len(buckets))
	income := make([]string, len(buckets))
	expense := make([]string, len(buckets))
	for i, bucket := range buckets {
		labels[i] = bucket.Month
		income[i] = bucket.Income.StringFixed(2)
		expense[i] = bucket.Expense.StringFixed(2)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Monthly summary retrieved successfully.",
		"data": map[string]interface{}{
			"labels": labels,
			"datasets": []map[string]interface{}{
				{"label": "Income", "data": income},
				{"label": "Expense", "data": expense},
			},
		},
	})
}

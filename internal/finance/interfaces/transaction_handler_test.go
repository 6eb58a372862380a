package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/spendwise-app/spendwise/internal/finance/application"
	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

func authenticatedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(context.WithValue(req.Context(), "userID", "user-1"))
}

func decodeResponse(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	err := json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)
	return response
}

func TestCreateTransaction_Unauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(&MockTransactionService{}, respondJSON, respondError)
	handler.CreateTransaction(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestCreateTransaction_Success(t *testing.T) {
	body := `{"amount":"12.5","type":"expense","category_id":"cat-1","date":"2025-04-12","description":"Coffee"}`
	req := authenticatedRequest(http.MethodPost, "/transactions", body)
	w := httptest.NewRecorder()

	mockService := &MockTransactionService{}
	handler := NewTransactionHandler(mockService, respondJSON, respondError)
	handler.CreateTransaction(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	assert.Len(t, mockService.created, 1)
	assert.Equal(t, "user-1", mockService.created[0].UserID)
	assert.True(t, mockService.created[0].Amount.Equal(decimal.RequireFromString("12.5")))

	response := decodeResponse(t, res)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "12.50", data["amount"])
	assert.Equal(t, "2025-04-12", data["date"])
}

func TestCreateTransaction_InvalidAmount(t *testing.T) {
	body := `{"amount":"twelve","type":"expense","category_id":"cat-1","date":"2025-04-12"}`
	req := authenticatedRequest(http.MethodPost, "/transactions", body)
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(&MockTransactionService{}, respondJSON, respondError)
	handler.CreateTransaction(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Amount must be a valid number", decodeResponse(t, res)["message"])
}

func TestCreateTransaction_ValidationErrorFromService(t *testing.T) {
	body := `{"amount":"10","type":"expense","category_id":"cat-1","date":"2025-04-12"}`
	req := authenticatedRequest(http.MethodPost, "/transactions", body)
	w := httptest.NewRecorder()

	mockService := &MockTransactionService{createErr: financeErrors.NewValidationError("Sub-category is required")}
	handler := NewTransactionHandler(mockService, respondJSON, respondError)
	handler.CreateTransaction(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Sub-category is required", decodeResponse(t, res)["message"])
}

func TestCreateTransaction_SubCategoryMismatch(t *testing.T) {
	body := `{"amount":"10","type":"expense","category_id":"cat-1","sub_category_id":"sub-9","date":"2025-04-12"}`
	req := authenticatedRequest(http.MethodPost, "/transactions", body)
	w := httptest.NewRecorder()

	mockService := &MockTransactionService{createErr: financeErrors.ErrSubCategoryMismatch}
	handler := NewTransactionHandler(mockService, respondJSON, respondError)
	handler.CreateTransaction(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Selected sub-category does not belong to the selected category", decodeResponse(t, res)["message"])
}

func TestGetUserTransactions_EmptyFeed(t *testing.T) {
	req := authenticatedRequest(http.MethodGet, "/transactions", "")
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(&MockTransactionService{}, respondJSON, respondError)
	handler.GetUserTransactions(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	assert.Equal(t, "No transactions yet.", response["message"])
	assert.Empty(t, response["data"])
}

func TestGetUserTransactions_LabelFallbacks(t *testing.T) {
	subCategoryID := "sub-1"
	mockService := &MockTransactionService{
		transactions: []domain.Transaction{
			{
				ID:              "tx-1",
				Amount:          decimal.RequireFromString("9.9"),
				Type:            domain.TypeExpense,
				CategoryID:      "cat-1",
				SubCategoryID:   &subCategoryID,
				Date:            time.Date(2025, time.April, 12, 0, 0, 0, 0, time.UTC),
				CategoryName:    "Food",
				SubCategoryName: "Restaurants",
			},
			{
				ID:         "tx-2",
				Amount:     decimal.RequireFromString("100"),
				Type:       domain.TypeIncome,
				CategoryID: "cat-gone",
				Date:       time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	req := authenticatedRequest(http.MethodGet, "/transactions", "")
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(mockService, respondJSON, respondError)
	handler.GetUserTransactions(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)

	first := data[0].(map[string]interface{})
	assert.Equal(t, "9.90", first["amount"])
	assert.Equal(t, "Food", first["category"])
	assert.Equal(t, "Restaurants", first["sub_category"])

	second := data[1].(map[string]interface{})
	assert.Equal(t, "100.00", second["amount"])
	assert.Equal(t, "N/A", second["category"])
	assert.Equal(t, "-", second["sub_category"])
}

func TestGetMonthlySummary_ChartShape(t *testing.T) {
	mockService := &MockTransactionService{
		buckets: []application.MonthlyBucket{
			{Month: "2025-03", Income: decimal.RequireFromString("3000"), Expense: decimal.RequireFromString("200.5")},
			{Month: "2025-04", Income: decimal.RequireFromString("0"), Expense: decimal.RequireFromString("75")},
		},
	}

	req := authenticatedRequest(http.MethodGet, "/transactions/summary/monthly", "")
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(mockService, respondJSON, respondError)
	handler.GetMonthlySummary(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	data := response["data"].(map[string]interface{})
	labels := data["labels"].([]interface{})
	assert.Equal(t, []interface{}{"2025-03", "2025-04"}, labels)

	datasets := data["datasets"].([]interface{})
	assert.Len(t, datasets, 2)

	income := datasets[0].(map[string]interface{})
	assert.Equal(t, "Income", income["label"])
	assert.Equal(t, []interface{}{"3000.00", "0.00"}, income["data"])

	expense := datasets[1].(map[string]interface{})
	assert.Equal(t, "Expense", expense["label"])
	assert.Equal(t, []interface{}{"200.50", "75.00"}, expense["data"])
}

func TestGetMonthlySummary_ServiceError(t *testing.T) {
	req := authenticatedRequest(http.MethodGet, "/transactions/summary/monthly", "")
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(&MockTransactionService{shouldFail: true}, respondJSON, respondError)
	handler.GetMonthlySummary(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

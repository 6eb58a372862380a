package interfaces

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
)

func TestGetCategories_Unauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)
	handler.GetCategories(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestGetCategories_Success(t *testing.T) {
	mockService := &MockCategoryService{
		categories: []domain.Category{
			{ID: "cat-1", GroupName: "Essentials", Name: "Food"},
			{ID: "cat-2", GroupName: "Lifestyle", Name: "Travel"},
		},
	}

	req := authenticatedRequest(http.MethodGet, "/categories", "")
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(mockService, respondJSON, respondError)
	handler.GetCategories(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestGetSubCategories_UnknownCategoryReturnsNotFound(t *testing.T) {
	req := authenticatedRequest(http.MethodGet, "/categories/cat-404/subcategories", "")
	req.SetPathValue("categoryID", "cat-404")
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(&MockCategoryService{unknownCategory: true}, respondJSON, respondError)
	handler.GetSubCategories(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Category not found", decodeResponse(t, res)["message"])
}

func TestGetSubCategories_Success(t *testing.T) {
	mockService := &MockCategoryService{
		subCategories: []domain.SubCategory{
			{ID: "sub-1", CategoryID: "cat-1", Name: "Restaurants"},
		},
	}

	req := authenticatedRequest(http.MethodGet, "/categories/cat-1/subcategories", "")
	req.SetPathValue("categoryID", "cat-1")
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(mockService, respondJSON, respondError)
	handler.GetSubCategories(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	response := decodeResponse(t, res)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
}

func TestCreateCategory_Success(t *testing.T) {
	req := authenticatedRequest(http.MethodPost, "/categories", `{"group_name":"Essentials","name":"Rent"}`)
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)
	handler.CreateCategory(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestCreateCategory_InvalidBody(t *testing.T) {
	req := authenticatedRequest(http.MethodPost, "/categories", `not-json`)
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)
	handler.CreateCategory(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreateSubCategory_Success(t *testing.T) {
	req := authenticatedRequest(http.MethodPost, "/categories/cat-1/subcategories", `{"name":"Restaurants"}`)
	req.SetPathValue("categoryID", "cat-1")
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)
	handler.CreateSubCategory(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

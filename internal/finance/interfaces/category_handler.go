package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

type CategoryServiceInterface interface {
	GetUserCategories(userID string) ([]domain.Category, error)
	GetSubCategories(userID, categoryID string) ([]domain.SubCategory, error)
	CreateCategory(category *domain.Category) error
	CreateSubCategory(subCategory *domain.SubCategory) error
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CategoryHandler {
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
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	categories, err := h.service.GetUserCategories(userID)
	if err != nil {
		fmt.Println("Error during categories retrieval:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories retrieved successfully.",
		"data":    categories,
	})
}

func (h *CategoryHandler) GetSubCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	categoryID := r.PathValue("categoryID")
	if categoryID == "" {
		h.respondError(w, http.StatusBadRequest, "Category ID is required")
		return
	}

	subCategories, err := h.service.GetSubCategories(userID, categoryID)
	if err != nil {
		if errors.Is(err, financeErrors.ErrInvalidCategory) {
			h.respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		fmt.Println("Error during sub-categories retrieval:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve sub-categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Sub-categories retrieved successfully.",
		"data":    subCategories,
	})
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category.UserID = userID
	if err := h.service.CreateCategory(&category); err != nil {
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		fmt.Println("Error during category creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    category,
	})
}

func (h *CategoryHandler) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	categoryID := r.PathValue("categoryID")
	if categoryID == "" {
		h.respondError(w, http.StatusBadRequest, "Category ID is required")
		return
	}

	var subCategory domain.SubCategory
	if err := json.NewDecoder(r.Body).Decode(&subCategory); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	subCategory.UserID = userID
	subCategory.CategoryID = categoryID
	if err := h.service.CreateSubCategory(&subCategory); err != nil {
		if errors.Is(err, financeErrors.ErrInvalidCategory) {
			h.respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		fmt.Println("Error during sub-category creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create sub-category")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Sub-category successfully created.",
		"data":    subCategory,
	})
}

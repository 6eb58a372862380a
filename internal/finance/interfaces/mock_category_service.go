package interfaces

import (
	"errors"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

type MockCategoryService struct {
	categories      []domain.Category
	subCategories   []domain.SubCategory
	unknownCategory bool
	shouldFail      bool
	createErr       error
}

func (m *MockCategoryService) GetUserCategories(userID string) ([]domain.Category, error) {
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	return m.categories, nil
}

func (m *MockCategoryService) GetSubCategories(userID, categoryID string) ([]domain.SubCategory, error) {
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	if m.unknownCategory {
		return nil, financeErrors.ErrInvalidCategory
	}
	return m.subCategories, nil
}

func (m *MockCategoryService) CreateCategory(category *domain.Category) error {
	if m.createErr != nil {
		return m.createErr
	}
	category.ID = "new-category-id"
	return nil
}

func (m *MockCategoryService) CreateSubCategory(subCategory *domain.SubCategory) error {
	if m.createErr != nil {
		return m.createErr
	}
	subCategory.ID = "new-sub-category-id"
	return nil
}

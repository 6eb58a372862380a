package infrastructure

import (
	"sort"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
)

// MockCategoryRepository is an in-memory repository used by service tests.
type MockCategoryRepository struct {
	Categories    []domain.Category
	SubCategories []domain.SubCategory
	Err           error
}

func (m *MockCategoryRepository) FindByUser(userID string) ([]domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var categories []domain.Category
	for _, category := range m.Categories {
		if category.UserID == userID {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].GroupName != categories[j].GroupName {
			return categories[i].GroupName < categories[j].GroupName
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (m *MockCategoryRepository) FindSubCategories(userID, categoryID string) ([]domain.SubCategory, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var subCategories []domain.SubCategory
	for _, subCategory := range m.SubCategories {
		if subCategory.UserID == userID && subCategory.CategoryID == categoryID {
			subCategories = append(subCategories, subCategory)
		}
	}
	sort.Slice(subCategories, func(i, j int) bool {
		return subCategories[i].Name < subCategories[j].Name
	})
	return subCategories, nil
}

func (m *MockCategoryRepository) DoesCategoryExist(categoryID, userID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, category := range m.Categories {
		if category.ID == categoryID && category.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCategoryRepository) DoesSubCategoryBelong(subCategoryID, categoryID, userID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, subCategory := range m.SubCategories {
		if subCategory.ID == subCategoryID && subCategory.CategoryID == categoryID && subCategory.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCategoryRepository) SaveCategory(category domain.Category) error {
	if m.Err != nil {
		return m.Err
	}
	m.Categories = append(m.Categories, category)
	return nil
}

func (m *MockCategoryRepository) SaveSubCategory(subCategory domain.SubCategory) error {
	if m.Err != nil {
		return m.Err
	}
	m.SubCategories = append(m.SubCategories, subCategory)
	return nil
}

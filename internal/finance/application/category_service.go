package application

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) GetUserCategories(userID string) ([]domain.Category, error) {
	categories, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// GetSubCategories lists the children of one category. The result is always
// scoped to a single parent, so a selection kept from a previously selected
// category can never resolve against it.
func (s *CategoryService) GetSubCategories(userID, categoryID string) ([]domain.SubCategory, error) {
	exists, err := s.repo.DoesCategoryExist(categoryID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, financeErrors.ErrInvalidCategory
	}

	subCategories, err := s.repo.FindSubCategories(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if subCategories == nil {
		return []domain.SubCategory{}, nil
	}
	return subCategories, nil
}

func (s *CategoryService) CreateCategory(category *domain.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.GroupName = strings.TrimSpace(category.GroupName)
	if category.Name == "" {
		return financeErrors.NewValidationError("Category name is required")
	}
	if len(category.Name) > 100 || len(category.GroupName) > 100 {
		return financeErrors.NewValidationError("Category name must be of length less than 100")
	}

	category.ID = uuid.NewString()
	return s.repo.SaveCategory(*category)
}

func (s *CategoryService) CreateSubCategory(subCategory *domain.SubCategory) error {
	subCategory.Name = strings.TrimSpace(subCategory.Name)
	if subCategory.Name == "" {
		return financeErrors.NewValidationError("Sub-category name is required")
	}
	if len(subCategory.Name) > 100 {
		return financeErrors.NewValidationError("Sub-category name must be of length less than 100")
	}
	if subCategory.CategoryID == "" {
		return financeErrors.ErrInvalidCategory
	}

	exists, err := s.repo.DoesCategoryExist(subCategory.CategoryID, subCategory.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.ErrInvalidCategory
	}

	subCategory.ID = uuid.NewString()
	return s.repo.SaveSubCategory(*subCategory)
}

func (s *CategoryService) DoesCategoryExist(categoryID, userID string) (bool, error) {
	return s.repo.DoesCategoryExist(categoryID, userID)
}

func (s *CategoryService) DoesSubCategoryBelong(subCategoryID, categoryID, userID string) (bool, error) {
	return s.repo.DoesSubCategoryBelong(subCategoryID, categoryID, userID)
}

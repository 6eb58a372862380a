package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

func TestGetSubCategories_ScopedToParent(t *testing.T) {
	service := NewCategoryService(ownedCategories())

	subCategories, err := service.GetSubCategories("user-1", "cat-1")

	assert.NoError(t, err)
	assert.Len(t, subCategories, 1)
	assert.Equal(t, "sub-1", subCategories[0].ID)
}

func TestGetSubCategories_UnknownCategory(t *testing.T) {
	service := NewCategoryService(ownedCategories())

	_, err := service.GetSubCategories("user-1", "cat-404")

	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)
}

func TestGetUserCategories_EmptyResultIsNotNil(t *testing.T) {
	service := NewCategoryService(ownedCategories())

	categories, err := service.GetUserCategories("user-without-categories")

	assert.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestCreateCategory_TrimsAndAssignsID(t *testing.T) {
	repo := ownedCategories()
	service := NewCategoryService(repo)

	category := domain.Category{UserID: "user-1", GroupName: "  Essentials ", Name: " Rent "}
	err := service.CreateCategory(&category)

	assert.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "Rent", category.Name)
	assert.Equal(t, "Essentials", category.GroupName)
}

func TestCreateCategory_RequiresName(t *testing.T) {
	service := NewCategoryService(ownedCategories())

	category := domain.Category{UserID: "user-1", Name: "   "}
	err := service.CreateCategory(&category)

	assert.True(t, financeErrors.IsValidationError(err))
}

func TestCreateSubCategory_RequiresExistingParent(t *testing.T) {
	service := NewCategoryService(ownedCategories())

	subCategory := domain.SubCategory{UserID: "user-1", CategoryID: "cat-404", Name: "Takeaway"}
	err := service.CreateSubCategory(&subCategory)

	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)
}

func TestCreateSubCategory_ParentOwnershipChecked(t *testing.T) {
	service := NewCategoryService(ownedCategories())

	subCategory := domain.SubCategory{UserID: "user-2", CategoryID: "cat-1", Name: "Takeaway"}
	err := service.CreateSubCategory(&subCategory)

	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)
}

package infrastructure

import (
	"database/sql"

	"github.com/spendwise-app/spendwise/internal/finance/domain"
	financeErrors "github.com/spendwise-app/spendwise/internal/finance/errors"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindByUser(userID string) ([]domain.Category, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, group_name, name FROM categories WHERE user_id = $1 ORDER BY group_name, name`,
		userID,
	)
	if err != nil {
		return nil, financeErrors.NewDataAccessError("list categories", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.GroupName, &category.Name); err != nil {
			return nil, financeErrors.NewDataAccessError("scan category", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, financeErrors.NewDataAccessError("list categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) FindSubCategories(userID, categoryID string) ([]domain.SubCategory, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, category_id, name FROM sub_categories WHERE user_id = $1 AND category_id = $2 ORDER BY name`,
		userID, categoryID,
	)
	if err != nil {
		return nil, financeErrors.NewDataAccessError("list sub-categories", err)
	}
	defer rows.Close()

	var subCategories []domain.SubCategory
	for rows.Next() {
		var subCategory domain.SubCategory
		if err := rows.Scan(&subCategory.ID, &subCategory.UserID, &subCategory.CategoryID, &subCategory.Name); err != nil {
			return nil, financeErrors.NewDataAccessError("scan sub-category", err)
		}
		subCategories = append(subCategories, subCategory)
	}
	if err := rows.Err(); err != nil {
		return nil, financeErrors.NewDataAccessError("list sub-categories", err)
	}
	return subCategories, nil
}

func (r *CategoryRepository) DoesCategoryExist(categoryID, userID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)"
	err := r.db.QueryRow(query, categoryID, userID).Scan(&exists)
	if err != nil {
		return false, financeErrors.NewDataAccessError("check category", err)
	}
	return exists, nil
}

func (r *CategoryRepository) DoesSubCategoryBelong(subCategoryID, categoryID, userID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM sub_categories WHERE id = $1 AND category_id = $2 AND user_id = $3)"
	err := r.db.QueryRow(query, subCategoryID, categoryID, userID).Scan(&exists)
	if err != nil {
		return false, financeErrors.NewDataAccessError("check sub-category", err)
	}
	return exists, nil
}

func (r *CategoryRepository) SaveCategory(category domain.Category) error {
	_, err := r.db.Exec(
		`INSERT INTO categories (id, user_id, group_name, name) VALUES ($1, $2, $3, $4)`,
		category.ID, category.UserID, category.GroupName, category.Name,
	)
	if err != nil {
		return financeErrors.NewWriteError(err)
	}
	return nil
}

func (r *CategoryRepository) SaveSubCategory(subCategory domain.SubCategory) error {
	_, err := r.db.Exec(
		`INSERT INTO sub_categories (id, user_id, category_id, name) VALUES ($1, $2, $3, $4)`,
		subCategory.ID, subCategory.UserID, subCategory.CategoryID, subCategory.Name,
	)
	if err != nil {
		return financeErrors.NewWriteError(err)
	}
	return nil
}

package domain

type Category struct {
	ID        string `json:"id"`
	UserID    string `json:"-"`
	GroupName string `json:"group_name,omitempty"`
	Name      string `json:"name"`
}

type SubCategory struct {
	ID         string `json:"id"`
	UserID     string `json:"-"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

type CategoryRepository interface {
	FindByUser(userID string) ([]Category, error)
	FindSubCategories(userID, categoryID string) ([]SubCategory, error)
	DoesCategoryExist(categoryID, userID string) (bool, error)
	DoesSubCategoryBelong(subCategoryID, categoryID, userID string) (bool, error)
	SaveCategory(category Category) error
	SaveSubCategory(subCategory SubCategory) error
}

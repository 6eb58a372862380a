package infrastructure

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	database "github.com/spendwise-app/spendwise/internal/db"
	"github.com/spendwise-app/spendwise/internal/finance/domain"
)

func startTestDatabase(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("spendwise_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, database.RunMigrations(db))
	return db
}

func insertTestUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	userID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO users (id, email, login, password_hash, hash_token)
		VALUES ($1, $2, $3, 'x', 'x')`,
		userID, userID+"@example.com", "login-"+userID[:8])
	require.NoError(t, err)
	return userID
}

func TestCategoryRepository_RoundTrip(t *testing.T) {
	db := startTestDatabase(t)
	repo := NewCategoryRepository(db)
	userID := insertTestUser(t, db)
	otherUserID := insertTestUser(t, db)

	food := domain.Category{ID: uuid.NewString(), UserID: userID, GroupName: "Essentials", Name: "Food"}
	travel := domain.Category{ID: uuid.NewString(), UserID: userID, GroupName: "Lifestyle", Name: "Travel"}
	foreign := domain.Category{ID: uuid.NewString(), UserID: otherUserID, GroupName: "Essentials", Name: "Bills"}
	require.NoError(t, repo.SaveCategory(food))
	require.NoError(t, repo.SaveCategory(travel))
	require.NoError(t, repo.SaveCategory(foreign))

	categories, err := repo.FindByUser(userID)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)
	assert.Equal(t, "Travel", categories[1].Name)

	exists, err := repo.DoesCategoryExist(food.ID, userID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.DoesCategoryExist(foreign.ID, userID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCategoryRepository_SubCategoriesScopedToParent(t *testing.T) {
	db := startTestDatabase(t)
	repo := NewCategoryRepository(db)
	userID := insertTestUser(t, db)

	food := domain.Category{ID: uuid.NewString(), UserID: userID, GroupName: "Essentials", Name: "Food"}
	transport := domain.Category{ID: uuid.NewString(), UserID: userID, GroupName: "Essentials", Name: "Transport"}
	require.NoError(t, repo.SaveCategory(food))
	require.NoError(t, repo.SaveCategory(transport))

	restaurants := domain.SubCategory{ID: uuid.NewString(), UserID: userID, CategoryID: food.ID, Name: "Restaurants"}
	fuel := domain.SubCategory{ID: uuid.NewString(), UserID: userID, CategoryID: transport.ID, Name: "Fuel"}
	require.NoError(t, repo.SaveSubCategory(restaurants))
	require.NoError(t, repo.SaveSubCategory(fuel))

	subCategories, err := repo.FindSubCategories(userID, food.ID)
	require.NoError(t, err)
	assert.Len(t, subCategories, 1)
	assert.Equal(t, "Restaurants", subCategories[0].Name)

	belongs, err := repo.DoesSubCategoryBelong(restaurants.ID, food.ID, userID)
	require.NoError(t, err)
	assert.True(t, belongs)

	belongs, err = repo.DoesSubCategoryBelong(fuel.ID, food.ID, userID)
	require.NoError(t, err)
	assert.False(t, belongs)
}

func TestTransactionRepository_FeedOrderAndLabels(t *testing.T) {
	db := startTestDatabase(t)
	categoryRepo := NewCategoryRepository(db)
	repo := NewTransactionRepository(db)
	userID := insertTestUser(t, db)

	food := domain.Category{ID: uuid.NewString(), UserID: userID, GroupName: "Essentials", Name: "Food"}
	require.NoError(t, categoryRepo.SaveCategory(food))
	restaurants := domain.SubCategory{ID: uuid.NewString(), UserID: userID, CategoryID: food.ID, Name: "Restaurants"}
	require.NoError(t, categoryRepo.SaveSubCategory(restaurants))

	older := domain.Transaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Amount:     decimal.RequireFromString("15.00"),
		Type:       domain.TypeExpense,
		CategoryID: food.ID,
		Date:       time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := domain.Transaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        decimal.RequireFromString("42.50"),
		Type:          domain.TypeExpense,
		CategoryID:    food.ID,
		SubCategoryID: &restaurants.ID,
		Date:          time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
		Description:   "Dinner",
	}
	require.NoError(t, repo.Save(older))
	require.NoError(t, repo.Save(newer))

	transactions, err := repo.FindByUser(userID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, newer.ID, transactions[0].ID)
	assert.Equal(t, older.ID, transactions[1].ID)

	assert.Equal(t, "Food", transactions[0].CategoryName)
	assert.Equal(t, "Restaurants", transactions[0].SubCategoryName)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("42.50")))

	assert.Empty(t, transactions[1].SubCategoryName)
	assert.Nil(t, transactions[1].SubCategoryID)
}

func TestTransactionRepository_SameDateOrderedByIDDescending(t *testing.T) {
	db := startTestDatabase(t)
	categoryRepo := NewCategoryRepository(db)
	repo := NewTransactionRepository(db)
	userID := insertTestUser(t, db)

	food := domain.Category{ID: uuid.NewString(), UserID: userID, GroupName: "Essentials", Name: "Food"}
	require.NoError(t, categoryRepo.SaveCategory(food))

	date := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		transaction := domain.Transaction{
			ID:         uuid.NewString(),
			UserID:     userID,
			Amount:     decimal.RequireFromString("1.00"),
			Type:       domain.TypeExpense,
			CategoryID: food.ID,
			Date:       date,
		}
		require.NoError(t, repo.Save(transaction))
		ids = append(ids, transaction.ID)
	}

	transactions, err := repo.FindByUser(userID)
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	for i := 1; i < len(transactions); i++ {
		assert.True(t, transactions[i-1].ID > transactions[i].ID)
	}
}

package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tiendatech/storefront/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestUser(t *testing.T, repo *Repository, email string, role entities.UserRole) *entities.User {
	user, err := repo.Create(&entities.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$04$fakehashfakehashfakehashfakehash",
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func TestRepository_GetByEmail(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestUser(t, repo, "admin@example.com", entities.UserRoleAdmin)

	user, err := repo.GetByEmail("admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)

	// Missing user is nil, nil - not an error
	user, err = repo.GetByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRepository_GetByID(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestUser(t, repo, "user@example.com", entities.UserRoleUser)

	user, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user@example.com", user.Email)

	user, err = repo.GetByID(9999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRepository_Create_DuplicateEmail(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, repo, "taken@example.com", entities.UserRoleUser)

	_, err := repo.Create(&entities.User{
		Email:        "taken@example.com",
		Name:         "Clone",
		PasswordHash: "hash",
		Role:         entities.UserRoleUser,
	})
	assert.Error(t, err, "unique index on email should reject duplicates")
}

func TestRepository_UpdatePassword(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestUser(t, repo, "user@example.com", entities.UserRoleUser)

	err := repo.UpdatePassword(created.ID, "newhash")
	require.NoError(t, err)

	user, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "newhash", user.PasswordHash)

	err = repo.UpdatePassword(9999, "newhash")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_UpdateName(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestUser(t, repo, "user@example.com", entities.UserRoleUser)

	user, err := repo.UpdateName(created.ID, "Renamed")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Renamed", user.Name)

	user, err = repo.UpdateName(9999, "Ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRepository_CountByRole(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestUser(t, repo, "admin1@example.com", entities.UserRoleAdmin)
	createTestUser(t, repo, "admin2@example.com", entities.UserRoleAdmin)
	createTestUser(t, repo, "user@example.com", entities.UserRoleUser)

	admins, err := repo.CountByRole(entities.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), admins)

	users, err := repo.CountByRole(entities.UserRoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
}

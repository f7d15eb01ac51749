package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avolkau/librarium/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
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

	return repo, cleanup
}

func TestRepository_CreateUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{
		LibraryID: "LIB-1001",
		Name:      "Alice",
		Role:      entities.UserRoleStudent,
	}
	require.NoError(t, repo.CreateUser(user))

	assert.NotZero(t, user.ID)

	got, err := repo.GetUserByLibraryID("LIB-1001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, entities.UserRoleStudent, got.Role)
}

func TestRepository_GetUserByLibraryID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetUserByLibraryID("nope")
	assert.Error(t, err)
}

func TestRepository_LibraryIDTaken(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	admin := &entities.User{LibraryID: "LIB-1", Name: "Root", Role: entities.UserRoleAdmin}
	require.NoError(t, repo.CreateUser(admin))

	// Uniqueness holds across roles
	taken, err := repo.LibraryIDTaken("LIB-1", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.LibraryIDTaken("LIB-2", 0)
	require.NoError(t, err)
	assert.False(t, taken)

	// A user keeping their own identifier is not a collision
	taken, err = repo.LibraryIDTaken("LIB-1", admin.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRepository_UpdateUserFields(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{LibraryID: "LIB-1", Name: "Alice", Role: entities.UserRoleStudent}
	require.NoError(t, repo.CreateUser(user))

	err := repo.UpdateUserFields(user.ID, map[string]any{"name": "Alice B."})
	require.NoError(t, err)

	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.Name)
}

func TestRepository_UpdateUserFields_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.UpdateUserFields(999, map[string]any{"name": "Ghost"})
	assert.Error(t, err)
}

func TestRepository_DeleteUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{LibraryID: "LIB-1", Name: "Alice", Role: entities.UserRoleStudent}
	require.NoError(t, repo.CreateUser(user))

	require.NoError(t, repo.DeleteUser(user.ID))

	_, err := repo.GetUserByID(user.ID)
	assert.Error(t, err)
}

func TestRepository_CountUsers(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := repo.CountUsers()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.CreateUser(&entities.User{LibraryID: "LIB-1", Name: "A", Role: entities.UserRoleAdmin}))
	require.NoError(t, repo.CreateUser(&entities.User{LibraryID: "LIB-2", Name: "B", Role: entities.UserRoleStudent}))

	count, err = repo.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

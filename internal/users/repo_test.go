package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestCreateUserDefaultsToCustomer(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, CreateUserInput{
		Email:        "aissatou@exemple.gn",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		FirstName:    "Aissatou",
		LastName:     "Barry",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleCustomer, user.Role)
	assert.True(t, user.IsActive)

	found, err := repo.FindByEmail(ctx, "aissatou@exemple.gn")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestCreateUserEnforcesUniqueEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	input := CreateUserInput{
		Email:        "mamadou@exemple.gn",
		PasswordHash: "hash",
		FirstName:    "Mamadou",
		LastName:     "Diallo",
	}
	_, err := repo.CreateUser(ctx, input)
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, input)
	assert.Error(t, err)
}

func TestUpdateLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, CreateUserInput{
		Email:        "fatou@exemple.gn",
		PasswordHash: "hash",
		FirstName:    "Fatou",
		LastName:     "Camara",
	})
	require.NoError(t, err)
	require.Nil(t, user.LastLoginAt)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, now))

	found, err := repo.FindUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, now, *found.LastLoginAt, time.Second)
}

func TestListByRole(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, CreateUserInput{
		Email: "gerant@nimbashop.gn", PasswordHash: "hash",
		FirstName: "Sekou", LastName: "Conde", Role: enums.UserRoleManager,
	})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, CreateUserInput{
		Email: "client@exemple.gn", PasswordHash: "hash",
		FirstName: "Oumar", LastName: "Sow",
	})
	require.NoError(t, err)

	managers, err := repo.ListByRole(ctx, enums.UserRoleManager)
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, "gerant@nimbashop.gn", managers[0].Email)
}

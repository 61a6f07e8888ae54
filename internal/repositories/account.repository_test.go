package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "server/internal/models"
)

func strPtr(s string) *string { return &s }

func TestAccountRepository_UpsertCreatesThenUpdates(t *testing.T) {
	repo := NewAccount(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &AccountInfo{
		UserID:      "user-1",
		CompanyName: strPtr("Acme Manufacturing"),
		EIN:         strPtr("12-3456789"),
	}))

	info, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Acme Manufacturing", *info.CompanyName)

	require.NoError(t, repo.Upsert(ctx, &AccountInfo{
		UserID:      "user-1",
		CompanyName: strPtr("Acme Holdings"),
		PlanName:    strPtr("Acme 401(k) Plan"),
	}))

	updated, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", *updated.CompanyName)
	assert.Equal(t, "Acme 401(k) Plan", *updated.PlanName)

	var count int64
	require.NoError(t, newTestDBCount(t, repo, &count))
	assert.Equal(t, int64(1), count)
}

// newTestDBCount counts AccountInfo rows through the repository's own
// database handle.
func newTestDBCount(t *testing.T, repo AccountRepository, count *int64) error {
	t.Helper()
	r, ok := repo.(*accountRepository)
	require.True(t, ok)
	return r.db.SQL.Model(&AccountInfo{}).Count(count).Error
}

func TestAccountRepository_UpsertRequiresUserID(t *testing.T) {
	repo := NewAccount(newTestDB(t))
	assert.Error(t, repo.Upsert(context.Background(), &AccountInfo{}))
}

func TestAccountRepository_GetMissingAccountIsNil(t *testing.T) {
	repo := NewAccount(newTestDB(t))

	info, err := repo.GetByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestAccountRepository_Users(t *testing.T) {
	repo := NewAccount(newTestDB(t))
	ctx := context.Background()

	user := &User{
		FirstName:   "Jane",
		LastName:    "Smith",
		DisplayName: "Jane Smith",
		Login:       "jsmith",
	}
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)

	byLogin, err := repo.GetUserByLogin(ctx, "jsmith")
	require.NoError(t, err)
	require.NotNil(t, byLogin)
	assert.Equal(t, user.ID, byLogin.ID)

	missing, err := repo.GetUserByLogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"server/internal/database"
	. "server/internal/models"
)

func newTestDB(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&TestRun{}, &PurchasedTest{}, &ConsentRecord{}, &ReportRecord{}, &AccountInfo{}, &User{},
	))

	// Cache clients stay nil; repositories treat cache failures as
	// warnings and fall through to SQL.
	return database.DB{SQL: gormDB}
}

func TestPurchaseRepository_GrantAndEntitlement(t *testing.T) {
	repo := NewPurchase(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Grant(ctx, "user-1", "adpTest"))

	purchase, err := repo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	require.NotNil(t, purchase)
	assert.True(t, purchase.Unlocked)
	assert.False(t, purchase.Used)

	missing, err := repo.GetEntitlement(ctx, "user-1", "acpTest")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPurchaseRepository_MarkUsedIsOneShot(t *testing.T) {
	repo := NewPurchase(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Grant(ctx, "user-1", "adpTest"))

	granted, err := repo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	require.NotNil(t, granted)

	require.NoError(t, repo.MarkUsed(ctx, "user-1", "adpTest"))

	purchase, err := repo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	require.NotNil(t, purchase)
	assert.True(t, purchase.Used)
	assert.False(t, purchase.Unlocked)
	// The update targets the existing row; no hook may rewrite its id.
	assert.Equal(t, granted.ID, purchase.ID)

	// Consuming again is a no-op, not an error.
	require.NoError(t, repo.MarkUsed(ctx, "user-1", "adpTest"))

	again, err := repo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	assert.True(t, again.Used)
	assert.False(t, again.Unlocked)
}

func TestPurchaseRepository_ConsumedPurchaseNeverReverts(t *testing.T) {
	repo := NewPurchase(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Grant(ctx, "user-1", "adpTest"))
	require.NoError(t, repo.MarkUsed(ctx, "user-1", "adpTest"))

	// Re-granting after consumption records the new purchase date and
	// re-unlocks, but never clears the used flag on its own.
	require.NoError(t, repo.Grant(ctx, "user-1", "adpTest"))

	purchase, err := repo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	assert.True(t, purchase.Used)
	assert.True(t, purchase.Unlocked)
}

func TestPurchaseRepository_MarkUsedMissingEntitlement(t *testing.T) {
	repo := NewPurchase(newTestDB(t))

	// No purchase exists; the update matches zero rows and succeeds.
	assert.NoError(t, repo.MarkUsed(context.Background(), "user-1", "adpTest"))
}

func TestPurchaseRepository_GetByUser(t *testing.T) {
	repo := NewPurchase(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Grant(ctx, "user-1", "adpTest"))
	require.NoError(t, repo.Grant(ctx, "user-1", "acpTest"))
	require.NoError(t, repo.Grant(ctx, "user-2", "topHeavyTest"))

	purchases, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, purchases, 2)
}

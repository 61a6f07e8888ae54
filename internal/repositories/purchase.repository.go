package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
)

const (
	PURCHASE_CACHE_EXPIRY = 12 * time.Hour
)

type PurchaseRepository interface {
	GetByUser(ctx context.Context, userID string) ([]*PurchasedTest, error)
	GetEntitlement(ctx context.Context, userID, testID string) (*PurchasedTest, error)
	Grant(ctx context.Context, userID, testID string) error
	MarkUsed(ctx context.Context, userID, testID string) error
}

type purchaseRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPurchase(db database.DB) PurchaseRepository {
	return &purchaseRepository{
		db:  db,
		log: logger.New("purchaseRepository"),
	}
}

func (r *purchaseRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *purchaseRepository) GetByUser(ctx context.Context, userID string) ([]*PurchasedTest, error) {
	log := r.log.Function("GetByUser")

	var purchases []*PurchasedTest
	if found, err := database.NewCacheBuilder(r.db.Cache.Purchases, userID).
		WithContext(ctx).
		Get(&purchases); err == nil && found {
		return purchases, nil
	}

	if err := r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Find(&purchases).Error; err != nil {
		return nil, log.Err("failed to get purchases for user", err, "userID", userID)
	}

	if err := database.NewCacheBuilder(r.db.Cache.Purchases, userID).
		WithStruct(purchases).
		WithTTL(PURCHASE_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to cache purchases", "userID", userID, "error", err)
	}

	return purchases, nil
}

func (r *purchaseRepository) GetEntitlement(ctx context.Context, userID, testID string) (*PurchasedTest, error) {
	log := r.log.Function("GetEntitlement")

	var purchase PurchasedTest
	err := r.getDB(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err("failed to get entitlement", err, "userID", userID, "testID", testID)
	}

	return &purchase, nil
}

// Grant records a confirmed purchase as an unlocked, unused
// entitlement. Re-granting an existing entitlement re-unlocks it only
// if it has not been consumed.
func (r *purchaseRepository) Grant(ctx context.Context, userID, testID string) error {
	log := r.log.Function("Grant")

	purchase := PurchasedTest{
		UserID:      userID,
		TestID:      testID,
		Unlocked:    true,
		Used:        false,
		PurchasedAt: time.Now(),
	}

	if err := r.getDB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "test_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"unlocked":     true,
				"purchased_at": purchase.PurchasedAt,
			}),
		}).
		Create(&purchase).Error; err != nil {
		return log.Err("failed to grant purchase", err, "userID", userID, "testID", testID)
	}

	r.invalidateUserCache(ctx, userID, log)
	return nil
}

// MarkUsed consumes a one-shot entitlement: used becomes true and
// unlocked becomes false, permanently. The guard on used keeps the
// operation idempotent; a consumed purchase is never modified again.
func (r *purchaseRepository) MarkUsed(ctx context.Context, userID, testID string) error {
	log := r.log.Function("MarkUsed")

	result := r.getDB(ctx).
		Model(&PurchasedTest{}).
		Where("user_id = ? AND test_id = ? AND used = ?", userID, testID, false).
		Updates(map[string]any{
			"used":     true,
			"unlocked": false,
		})
	if result.Error != nil {
		return log.Err("failed to mark purchase used", result.Error, "userID", userID, "testID", testID)
	}

	if result.RowsAffected == 0 {
		log.Debug("purchase already consumed or missing", "userID", userID, "testID", testID)
	}

	r.invalidateUserCache(ctx, userID, log)
	return nil
}

func (r *purchaseRepository) invalidateUserCache(ctx context.Context, userID string, log logger.Logger) {
	if cacheErr := database.NewCacheBuilder(r.db.Cache.Purchases, userID).
		WithContext(ctx).
		Delete(); cacheErr != nil {
		log.Warn("failed to invalidate purchase cache", "userID", userID, "error", cacheErr)
	}
}

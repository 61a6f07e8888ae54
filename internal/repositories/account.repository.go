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
	ACCOUNT_CACHE_EXPIRY = 6 * time.Hour
)

type AccountRepository interface {
	GetByUser(ctx context.Context, userID string) (*AccountInfo, error)
	Upsert(ctx context.Context, info *AccountInfo) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
}

type accountRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAccount(db database.DB) AccountRepository {
	return &accountRepository{
		db:  db,
		log: logger.New("accountRepository"),
	}
}

func (r *accountRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *accountRepository) GetByUser(ctx context.Context, userID string) (*AccountInfo, error) {
	log := r.log.Function("GetByUser")

	var info AccountInfo
	if found, err := database.NewCacheBuilder(r.db.Cache.Account, userID).
		WithContext(ctx).
		Get(&info); err == nil && found {
		return &info, nil
	}

	err := r.getDB(ctx).Where("user_id = ?", userID).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err("failed to get account info", err, "userID", userID)
	}

	if cacheErr := r.addToCache(ctx, &info); cacheErr != nil {
		log.Warn("failed to cache account info", "userID", userID, "error", cacheErr)
	}

	return &info, nil
}

// Upsert writes the autosaved profile block, keyed by user.
func (r *accountRepository) Upsert(ctx context.Context, info *AccountInfo) error {
	log := r.log.Function("Upsert")

	if info.UserID == "" {
		return log.ErrMsg("account info requires a user id")
	}

	if err := r.getDB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"company_name", "contact_name", "email", "phone", "ein", "plan_name", "updated_at",
			}),
		}).
		Create(info).Error; err != nil {
		return log.Err("failed to upsert account info", err, "userID", info.UserID)
	}

	if cacheErr := r.addToCache(ctx, info); cacheErr != nil {
		log.Warn("failed to cache account info", "userID", info.UserID, "error", cacheErr)
	}

	return nil
}

func (r *accountRepository) GetUser(ctx context.Context, id string) (*User, error) {
	log := r.log.Function("GetUser")

	var user User
	if err := r.getDB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get user", err, "id", id)
	}

	return &user, nil
}

func (r *accountRepository) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	log := r.log.Function("GetUserByLogin")

	var user User
	err := r.getDB(ctx).Where("login = ?", login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err("failed to get user by login", err, "login", login)
	}

	return &user, nil
}

func (r *accountRepository) CreateUser(ctx context.Context, user *User) error {
	log := r.log.Function("CreateUser")

	if err := r.getDB(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "login", user.Login)
	}

	return nil
}

func (r *accountRepository) addToCache(ctx context.Context, info *AccountInfo) error {
	return database.NewCacheBuilder(r.db.Cache.Account, info.UserID).
		WithStruct(info).
		WithTTL(ACCOUNT_CACHE_EXPIRY).
		WithContext(ctx).
		Set()
}

package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
)

type ConsentRepository interface {
	Create(ctx context.Context, record *ConsentRecord) error
	GetByRun(ctx context.Context, userID, runID string) (*ConsentRecord, error)
}

type consentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewConsent(db database.DB) ConsentRepository {
	return &consentRepository{
		db:  db,
		log: logger.New("consentRepository"),
	}
}

func (r *consentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *consentRepository) Create(ctx context.Context, record *ConsentRecord) error {
	log := r.log.Function("Create")

	if !record.Agreed {
		return log.ErrMsg("consent record must be agreed before it is stored")
	}
	if record.Signature == "" {
		return log.ErrMsg("consent record requires a signature")
	}

	if err := r.getDB(ctx).Create(record).Error; err != nil {
		return log.Err("failed to create consent record", err, "runID", record.RunID)
	}

	return nil
}

func (r *consentRepository) GetByRun(ctx context.Context, userID, runID string) (*ConsentRecord, error) {
	log := r.log.Function("GetByRun")

	var record ConsentRecord
	err := r.getDB(ctx).
		Where("user_id = ? AND run_id = ?", userID, runID).
		Order("signed_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err("failed to get consent record", err, "runID", runID)
	}

	return &record, nil
}

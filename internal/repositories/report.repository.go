package repositories

import (
	"context"

	"gorm.io/gorm"

	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
)

type ReportRepository interface {
	Create(ctx context.Context, record *ReportRecord) error
	GetByUser(ctx context.Context, userID string) ([]*ReportRecord, error)
	GetByID(ctx context.Context, id string) (*ReportRecord, error)
}

type reportRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReport(db database.DB) ReportRepository {
	return &reportRepository{
		db:  db,
		log: logger.New("reportRepository"),
	}
}

func (r *reportRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *reportRepository) Create(ctx context.Context, record *ReportRecord) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(record).Error; err != nil {
		return log.Err("failed to create report record", err, "runID", record.RunID)
	}

	return nil
}

func (r *reportRepository) GetByUser(ctx context.Context, userID string) ([]*ReportRecord, error) {
	log := r.log.Function("GetByUser")

	var records []*ReportRecord
	if err := r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, log.Err("failed to get report records", err, "userID", userID)
	}

	return records, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*ReportRecord, error) {
	log := r.log.Function("GetByID")

	var record ReportRecord
	if err := r.getDB(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get report record", err, "id", id)
	}

	return &record, nil
}

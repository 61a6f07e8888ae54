package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
)

const (
	TEST_RUN_CACHE_EXPIRY = 24 * time.Hour
)

type TestRunRepository interface {
	GetByID(ctx context.Context, id string) (*TestRun, error)
	GetByUser(ctx context.Context, userID string) ([]*TestRun, error)
	Create(ctx context.Context, run *TestRun) error
	Update(ctx context.Context, run *TestRun) error
	Delete(ctx context.Context, id string) error
}

type testRunRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTestRun(db database.DB) TestRunRepository {
	return &testRunRepository{
		db:  db,
		log: logger.New("testRunRepository"),
	}
}

func (r *testRunRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *testRunRepository) GetByID(ctx context.Context, id string) (*TestRun, error) {
	log := r.log.Function("GetByID")

	var run TestRun
	if err := r.getCacheByID(ctx, id, &run); err == nil {
		return &run, nil
	}

	if err := r.getDB(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get test run by id", err, "id", id)
	}

	if err := r.addRunToCache(ctx, &run); err != nil {
		log.Warn("failed to add test run to cache", "runID", id, "error", err)
	}

	return &run, nil
}

func (r *testRunRepository) GetByUser(ctx context.Context, userID string) ([]*TestRun, error) {
	log := r.log.Function("GetByUser")

	var runs []*TestRun
	if err := r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return nil, log.Err("failed to get test runs for user", err, "userID", userID)
	}

	return runs, nil
}

func (r *testRunRepository) Create(ctx context.Context, run *TestRun) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(run).Error; err != nil {
		return log.Err("failed to create test run", err, "testKey", run.TestKey)
	}

	if err := r.addRunToCache(ctx, run); err != nil {
		log.Warn("failed to add test run to cache", "runID", run.ID, "error", err)
	}

	return nil
}

func (r *testRunRepository) Update(ctx context.Context, run *TestRun) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(run).Error; err != nil {
		return log.Err("failed to update test run", err, "runID", run.ID)
	}

	if err := r.addRunToCache(ctx, run); err != nil {
		log.Warn("failed to update test run in cache", "runID", run.ID, "error", err)
	}

	return nil
}

func (r *testRunRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&TestRun{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete test run", err, "id", id)
	}

	if err := database.NewCacheBuilder(r.db.Cache.Runs, id).Delete(); err != nil {
		log.Warn("failed to remove test run from cache", "runID", id, "error", err)
	}

	return nil
}

func (r *testRunRepository) getCacheByID(ctx context.Context, runID string, run *TestRun) error {
	found, err := database.NewCacheBuilder(r.db.Cache.Runs, runID).
		WithContext(ctx).
		Get(run)
	if err != nil {
		return r.log.Function("getCacheByID").
			Err("failed to get test run from cache", err, "runID", runID)
	}

	if !found {
		return r.log.Function("getCacheByID").
			Error("test run not found in cache", "runID", runID)
	}

	return nil
}

func (r *testRunRepository) addRunToCache(ctx context.Context, run *TestRun) error {
	if err := database.NewCacheBuilder(r.db.Cache.Runs, run.ID).
		WithStruct(run).
		WithTTL(TEST_RUN_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addRunToCache").
			Err("failed to add test run to cache", err, "runID", run.ID)
	}
	return nil
}

package services

import (
	"context"

	"gorm.io/gorm"

	"server/internal/database"
	"server/internal/logger"
)

type transactionKey struct{}

// GetTransaction returns the transaction bound to the context, if any.
// Repositories route their queries through it so multi-step writes
// commit or roll back together.
func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(transactionKey{}).(*gorm.DB)
	return tx, ok
}

type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("transactionService"),
	}
}

// Execute runs fn inside a database transaction. The transaction is
// injected into the context so every repository call inside fn joins
// it; any error rolls the whole unit back.
func (s *TransactionService) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	log := s.log.Function("Execute")

	tx := s.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	txCtx := context.WithValue(ctx, transactionKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			log.Er("failed to roll back transaction", rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}

package controllers

import (
	"context"

	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"
)

type AccountController struct {
	accountRepo repositories.AccountRepository
	autosave    *services.AutosaveService
	log         logger.Logger
}

func NewAccountController(
	accountRepo repositories.AccountRepository,
	autosave *services.AutosaveService,
) *AccountController {
	return &AccountController{
		accountRepo: accountRepo,
		autosave:    autosave,
		log:         logger.New("accountController"),
	}
}

func (c *AccountController) GetAccount(ctx context.Context, userID string) (*AccountInfo, error) {
	return c.accountRepo.GetByUser(ctx, userID)
}

// SaveAccount queues a debounced write of the profile block. Rapid
// keystrokes coalesce into one upsert of the latest state.
func (c *AccountController) SaveAccount(userID string, info AccountInfo) {
	info.UserID = userID
	c.autosave.Queue(userID, func(ctx context.Context) error {
		return c.accountRepo.Upsert(ctx, &info)
	})
}

// FlushAccount persists any pending autosave immediately, used when the
// client signals it is navigating away.
func (c *AccountController) FlushAccount(userID string) {
	c.autosave.Flush(userID)
}

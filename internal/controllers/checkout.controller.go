package controllers

import (
	"context"

	"server/internal/catalog"
	"server/internal/compliance"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"
)

type CheckoutController struct {
	purchaseRepo       repositories.PurchaseRepository
	compliance         *compliance.Client
	transactionService *services.TransactionService
	log                logger.Logger
}

func NewCheckoutController(
	purchaseRepo repositories.PurchaseRepository,
	complianceClient *compliance.Client,
	transactionService *services.TransactionService,
) *CheckoutController {
	return &CheckoutController{
		purchaseRepo:       purchaseRepo,
		compliance:         complianceClient,
		transactionService: transactionService,
		log:                logger.New("checkoutController"),
	}
}

// CreateCheckout validates the cart against the catalog and opens a
// checkout session with the payment backend.
func (c *CheckoutController) CreateCheckout(ctx context.Context, userID string, items []CartItem) (string, error) {
	log := c.log.Function("CreateCheckout")

	if len(items) == 0 {
		return "", log.ErrMsg("cart is empty")
	}

	for _, item := range items {
		if _, ok := catalog.Lookup(item.TestID); !ok {
			return "", log.Error("cart references unknown test", "testID", item.TestID)
		}
	}

	return c.compliance.CreateCheckoutSession(ctx, userID, items)
}

// ConfirmPurchases grants all entitlements from a completed checkout in
// one transaction; a partial grant never survives.
func (c *CheckoutController) ConfirmPurchases(ctx context.Context, userID string, items []CartItem) error {
	log := c.log.Function("ConfirmPurchases")

	if len(items) == 0 {
		return log.ErrMsg("no purchases to confirm")
	}

	return c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		for _, item := range items {
			if _, ok := catalog.Lookup(item.TestID); !ok {
				return log.Error("purchase references unknown test", "testID", item.TestID)
			}
			if err := c.purchaseRepo.Grant(txCtx, userID, item.TestID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *CheckoutController) GetPurchases(ctx context.Context, userID string) ([]*PurchasedTest, error) {
	return c.purchaseRepo.GetByUser(ctx, userID)
}

package handlers

import (
	"server/config"
	"server/internal/app"
	checkoutController "server/internal/controllers"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	Handler
	controller checkoutController.CheckoutController
	config     config.Config
}

func NewPurchaseHandler(app app.App, router fiber.Router) *PurchaseHandler {
	log := logger.New("handlers").File("purchase_handler")
	return &PurchaseHandler{
		controller: *app.CheckoutController,
		config:     app.Config,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PurchaseHandler) Register() {
	purchases := h.router.Group("/purchases", h.middleware.RequireAuth())
	purchases.Get("/", h.getPurchases)
	purchases.Post("/checkout", h.createCheckout)
	purchases.Post("/confirm", h.confirmPurchases)
}

func (h *PurchaseHandler) getPurchases(c *fiber.Ctx) error {
	log := h.log.Function("getPurchases")

	userID, _ := c.Locals("userID").(string)
	purchases, err := h.controller.GetPurchases(c.Context(), userID)
	if err != nil {
		log.Er("failed to get purchases", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to get purchases"})
	}

	return c.JSON(fiber.Map{"message": "success", "purchases": purchases})
}

func (h *PurchaseHandler) createCheckout(c *fiber.Ctx) error {
	log := h.log.Function("createCheckout")

	var request CheckoutRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse checkout request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse checkout request"})
	}

	userID, _ := c.Locals("userID").(string)
	sessionID, err := h.controller.CreateCheckout(c.Context(), userID, request.TestItems)
	if err != nil {
		log.Er("failed to create checkout session", err)
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"message": "failed to create checkout session", "error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":        "success",
		"sessionId":      sessionID,
		"publishableKey": h.config.StripePublishableKey,
	})
}

func (h *PurchaseHandler) confirmPurchases(c *fiber.Ctx) error {
	log := h.log.Function("confirmPurchases")

	var request CheckoutRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse confirmation request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse confirmation request"})
	}

	userID, _ := c.Locals("userID").(string)
	if err := h.controller.ConfirmPurchases(c.Context(), userID, request.TestItems); err != nil {
		log.Er("failed to confirm purchases", err)
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"message": "failed to confirm purchases", "error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "success"})
}

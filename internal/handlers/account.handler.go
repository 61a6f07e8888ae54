package handlers

import (
	"server/internal/app"
	accountController "server/internal/controllers"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	Handler
	controller accountController.AccountController
}

func NewAccountHandler(app app.App, router fiber.Router) *AccountHandler {
	log := logger.New("handlers").File("account_handler")
	return &AccountHandler{
		controller: *app.AccountController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AccountHandler) Register() {
	account := h.router.Group("/account", h.middleware.RequireAuth())
	account.Get("/", h.getAccount)
	account.Put("/", h.saveAccount)
	account.Post("/flush", h.flushAccount)
}

func (h *AccountHandler) getAccount(c *fiber.Ctx) error {
	log := h.log.Function("getAccount")

	userID, _ := c.Locals("userID").(string)
	info, err := h.controller.GetAccount(c.Context(), userID)
	if err != nil {
		log.Er("failed to get account info", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to get account info"})
	}

	return c.JSON(fiber.Map{"message": "success", "account": info})
}

// saveAccount accepts every keystroke; persistence is debounced behind
// the scenes so the response is immediate.
func (h *AccountHandler) saveAccount(c *fiber.Ctx) error {
	log := h.log.Function("saveAccount")

	var info AccountInfo
	if err := c.BodyParser(&info); err != nil {
		log.Er("failed to parse account info", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse account info"})
	}

	userID, _ := c.Locals("userID").(string)
	h.controller.SaveAccount(userID, info)

	return c.JSON(fiber.Map{"message": "success"})
}

func (h *AccountHandler) flushAccount(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	h.controller.FlushAccount(userID)

	return c.JSON(fiber.Map{"message": "success"})
}

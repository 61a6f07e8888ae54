package handlers

import (
	"server/internal/app"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	accounts repositories.AccountRepository
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		accounts: app.AccountRepo,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users")
	users.Post("/login", h.login)

	users.Get("/", h.middleware.RequireAuth(), h.getUser)
	users.Post("/logout", h.middleware.RequireAuth(), h.logout)
}

func (h *UserHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var loginRequest LoginRequest
	if err := c.BodyParser(&loginRequest); err != nil {
		log.Er("failed to parse login request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse login request"})
	}

	user, err := h.accounts.GetUserByLogin(c.Context(), loginRequest.Login)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to look up user"})
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "unknown login"})
	}

	token, err := h.middleware.IssueSession(c.Context(), user.ID)
	if err != nil {
		log.Er("failed to issue session", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to issue session"})
	}

	return c.JSON(fiber.Map{"message": "success", "token": token, "user": user})
}

func (h *UserHandler) getUser(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(User)
	if !ok || user.ID == "" {
		h.log.Function("getUser").ErMsg("No user found in locals")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get user"})
	}

	return c.JSON(fiber.Map{"message": "success", "user": user})
}

func (h *UserHandler) logout(c *fiber.Ctx) error {
	token, _ := c.Locals("authToken").(string)
	if token != "" {
		if err := h.middleware.RevokeSession(c.Context(), token); err != nil {
			h.log.Function("logout").Er("failed to revoke session", err)
		}
	}

	return c.JSON(fiber.Map{"message": "success"})
}

package handlers

import (
	"io"
	"strconv"
	"strings"

	"server/internal/app"
	"server/internal/catalog"
	testRunController "server/internal/controllers"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TestRunHandler struct {
	Handler
	controller testRunController.TestRunController
}

func NewTestRunHandler(app app.App, router fiber.Router) *TestRunHandler {
	log := logger.New("handlers").File("testRun_handler")
	return &TestRunHandler{
		controller: *app.TestRunController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *TestRunHandler) Register() {
	tests := h.router.Group("/tests")
	tests.Get("/", h.getCatalog)

	auth := h.middleware.RequireAuth()
	tests.Post("/:key/run", auth, h.submitTest)
	tests.Post("/run-batch", auth, h.submitBatch)

	runs := h.router.Group("/runs", auth)
	runs.Get("/", h.getRuns)
	runs.Get("/:id", h.getRun)
}

// getCatalog returns every test definition; the client builds its test
// pages from this instead of hard-coding them.
func (h *TestRunHandler) getCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "success", "tests": catalog.All()})
}

func (h *TestRunHandler) submitTest(c *fiber.Ctx) error {
	log := h.log.Function("submitTest")

	req, err := h.parseSubmission(c, c.Params("key"))
	if err != nil {
		log.Er("failed to parse test submission", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse test submission", "error": err.Error()})
	}

	token, _ := c.Locals("authToken").(string)
	run, err := h.controller.Submit(c.Context(), token, *req)
	if err != nil {
		log.Er("test submission failed", err, "testKey", req.TestKey)
		status := fiber.StatusUnprocessableEntity
		if run != nil && run.Status == RunStatusFailed {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).
			JSON(fiber.Map{"message": "test submission failed", "error": err.Error(), "run": run})
	}

	return c.JSON(fiber.Map{"message": "success", "run": run})
}

func (h *TestRunHandler) submitBatch(c *fiber.Ctx) error {
	log := h.log.Function("submitBatch")

	selected := strings.Split(c.FormValue("selected_tests"), ",")
	if len(selected) == 0 || selected[0] == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "no tests selected"})
	}

	reqs := make([]SubmitTestRequest, 0, len(selected))
	for _, key := range selected {
		req, err := h.parseSubmission(c, strings.TrimSpace(key))
		if err != nil {
			log.Er("failed to parse batch submission", err)
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "failed to parse batch submission", "error": err.Error()})
		}
		reqs = append(reqs, *req)
	}

	token, _ := c.Locals("authToken").(string)
	runs := h.controller.SubmitBatch(c.Context(), token, reqs)

	return c.JSON(fiber.Map{"message": "success", "runs": runs})
}

func (h *TestRunHandler) getRun(c *fiber.Ctx) error {
	log := h.log.Function("getRun")

	userID, _ := c.Locals("userID").(string)
	run, err := h.controller.GetRun(c.Context(), userID, c.Params("id"))
	if err != nil {
		log.Er("failed to get run", err)
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "run not found"})
	}

	return c.JSON(fiber.Map{"message": "success", "run": run})
}

func (h *TestRunHandler) getRuns(c *fiber.Ctx) error {
	log := h.log.Function("getRuns")

	userID, _ := c.Locals("userID").(string)
	runs, err := h.controller.GetRuns(c.Context(), userID)
	if err != nil {
		log.Er("failed to get runs", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to get runs"})
	}

	return c.JSON(fiber.Map{"message": "success", "runs": runs})
}

func (h *TestRunHandler) parseSubmission(c *fiber.Ctx, testKey string) (*SubmitTestRequest, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var planYear *int
	if value := c.FormValue("plan_year"); value != "" {
		year, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		planYear = &year
	}

	userID, _ := c.Locals("userID").(string)

	return &SubmitTestRequest{
		UserID:   userID,
		TestKey:  testKey,
		PlanYear: planYear,
		FileName: fileHeader.Filename,
		FileData: data,
	}, nil
}

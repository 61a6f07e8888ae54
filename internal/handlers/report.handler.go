package handlers

import (
	"server/internal/app"
	reportController "server/internal/controllers"
	"server/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	Handler
	controller reportController.ReportController
}

func NewReportHandler(app app.App, router fiber.Router) *ReportHandler {
	log := logger.New("handlers").File("report_handler")
	return &ReportHandler{
		controller: *app.ReportController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReportHandler) Register() {
	h.router.Get("/tests/:key/template", h.downloadTemplate)

	reports := h.router.Group("/reports", h.middleware.RequireAuth())
	reports.Get("/", h.getReports)
	reports.Get("/runs/:id/csv", h.exportCSV)
	reports.Post("/runs/:id/pdf", h.exportPDF)
	reports.Post("/runs/:id/ai-review", h.requestAIReview)
	reports.Get("/blob/*", h.downloadBlob)
}

func (h *ReportHandler) downloadTemplate(c *fiber.Ctx) error {
	log := h.log.Function("downloadTemplate")

	fileName, content, err := h.controller.TemplateCSV(c.Params("key"))
	if err != nil {
		log.Er("failed to build template", err)
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "unknown test"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.SendString(content)
}

func (h *ReportHandler) getReports(c *fiber.Ctx) error {
	log := h.log.Function("getReports")

	userID, _ := c.Locals("userID").(string)
	reports, err := h.controller.GetReports(c.Context(), userID)
	if err != nil {
		log.Er("failed to get reports", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to get reports"})
	}

	return c.JSON(fiber.Map{"message": "success", "reports": reports})
}

func (h *ReportHandler) exportCSV(c *fiber.Ctx) error {
	log := h.log.Function("exportCSV")

	userID, _ := c.Locals("userID").(string)
	fileName, content, err := h.controller.ExportCSV(c.Context(), userID, c.Params("id"))
	if err != nil {
		log.Er("failed to export csv", err)
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"message": "failed to export results", "error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.SendString(content)
}

type exportPDFRequest struct {
	AIReview  string `json:"aiReview"`
	Signature string `json:"signature"`
}

func (h *ReportHandler) exportPDF(c *fiber.Ctx) error {
	log := h.log.Function("exportPDF")

	var request exportPDFRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			log.Er("failed to parse export request", err)
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "failed to parse export request"})
		}
	}

	userID, _ := c.Locals("userID").(string)
	doc, err := h.controller.ExportPDF(c.Context(), userID, c.Params("id"),
		request.AIReview, request.Signature)
	if err != nil {
		log.Er("failed to export pdf", err)
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"message": "failed to export report", "error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.FileName+`"`)
	return c.Send(doc.Bytes)
}

type aiReviewRequest struct {
	Signature string `json:"signature"`
}

func (h *ReportHandler) requestAIReview(c *fiber.Ctx) error {
	log := h.log.Function("requestAIReview")

	var request aiReviewRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse ai review request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse ai review request"})
	}

	userID, _ := c.Locals("userID").(string)
	token, _ := c.Locals("authToken").(string)
	analysis, err := h.controller.RequestAIReview(c.Context(), token, userID, c.Params("id"), request.Signature)
	if err != nil {
		log.Er("failed to get ai review", err)
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"message": "failed to get ai review", "error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "success", "analysis": analysis})
}

func (h *ReportHandler) downloadBlob(c *fiber.Ctx) error {
	log := h.log.Function("downloadBlob")

	userID, _ := c.Locals("userID").(string)
	data, err := h.controller.LoadBlob(userID, c.Params("*"))
	if err != nil {
		log.Er("failed to load report blob", err)
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "report not found"})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}

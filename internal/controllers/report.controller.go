package controllers

import (
	"context"
	"path"
	"strings"
	"time"

	"server/internal/catalog"
	"server/internal/compliance"
	"server/internal/exports"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/report"
	"server/internal/repositories"
	"server/internal/storage"
	"server/internal/utils"
)

const templateSampleRows = 10

type ReportController struct {
	runRepo     repositories.TestRunRepository
	reportRepo  repositories.ReportRepository
	consentRepo repositories.ConsentRepository
	compliance  *compliance.Client
	store       *storage.ArtifactStore
	log         logger.Logger
}

func NewReportController(
	runRepo repositories.TestRunRepository,
	reportRepo repositories.ReportRepository,
	consentRepo repositories.ConsentRepository,
	complianceClient *compliance.Client,
	store *storage.ArtifactStore,
) *ReportController {
	return &ReportController{
		runRepo:     runRepo,
		reportRepo:  reportRepo,
		consentRepo: consentRepo,
		compliance:  complianceClient,
		store:       store,
		log:         logger.New("reportController"),
	}
}

// TemplateCSV produces a downloadable census template for a test, with
// sample rows so users can see the expected shape.
func (c *ReportController) TemplateCSV(testKey string) (fileName, content string, err error) {
	log := c.log.Function("TemplateCSV")

	def, ok := catalog.Lookup(testKey)
	if !ok {
		return "", "", log.Error("unknown test", "testKey", testKey)
	}

	rows := make([][]string, 0, templateSampleRows+1)
	rows = append(rows, def.TemplateHeaders)
	rows = append(rows, utils.SampleRows(def.TemplateHeaders, templateSampleRows)...)

	content, err = exports.TemplateCSV(rows)
	if err != nil {
		return "", "", err
	}

	return def.Key + "_template.csv", content, nil
}

// ExportCSV renders the stored result of a completed run as CSV.
func (c *ReportController) ExportCSV(ctx context.Context, userID, runID string) (fileName, content string, err error) {
	run, def, err := c.completedRun(ctx, userID, runID)
	if err != nil {
		return "", "", err
	}

	content, err = exports.ResultCSV(def, run.Result, run.PlanYear)
	if err != nil {
		return "", "", err
	}

	return exports.ResultFileName(def, run.PlanYear), content, nil
}

// RequestAIReview records the signed consent and fetches the AI
// corrective-action narrative for a failed run.
func (c *ReportController) RequestAIReview(
	ctx context.Context,
	token, userID, runID, signature string,
) (string, error) {
	log := c.log.Function("RequestAIReview")

	run, def, err := c.completedRun(ctx, userID, runID)
	if err != nil {
		return "", err
	}

	if signature == "" {
		return "", log.ErrMsg("a signature is required for an AI review")
	}

	if err := c.consentRepo.Create(ctx, &ConsentRecord{
		UserID:    userID,
		RunID:     runID,
		FileName:  run.FileName,
		Signature: signature,
		Agreed:    true,
		SignedAt:  time.Now(),
	}); err != nil {
		return "", err
	}

	return c.compliance.AIReview(ctx, token, def.Key, run.Result, signature)
}

// ExportPDF builds the report document, stores the blob, and records
// the metadata row. The stored run is never touched: a failed export
// leaves the result intact and retryable.
func (c *ReportController) ExportPDF(
	ctx context.Context,
	userID, runID, aiReview, signature string,
) (*report.Document, error) {
	log := c.log.Function("ExportPDF")

	run, def, err := c.completedRun(ctx, userID, runID)
	if err != nil {
		return nil, err
	}

	if aiReview != "" {
		consent, consentErr := c.consentRepo.GetByRun(ctx, userID, runID)
		if consentErr != nil {
			return nil, consentErr
		}
		if consent == nil {
			return nil, log.Error("ai review requested without recorded consent", "runID", runID)
		}
	}

	generatedAt := time.Now().UTC()
	doc, err := report.Build(def, run.Result, report.Options{
		PlanYear:    run.PlanYear,
		AIReview:    aiReview,
		Signature:   signature,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, err
	}

	relPath, err := c.store.SaveReportBlob(userID, run.FileName, generatedAt, doc.Bytes)
	if err != nil {
		return nil, err
	}

	record := &ReportRecord{
		UserID:     userID,
		RunID:      runID,
		FileName:   doc.FileName,
		PdfPath:    relPath,
		PdfURL:     c.store.BlobURL(relPath),
		PlanYear:   run.PlanYear,
		TestResult: run.Result.Outcome(),
		AIConsent:  aiReview != "",
	}
	if err := c.reportRepo.Create(ctx, record); err != nil {
		log.Er("failed to record report metadata", err, "runID", runID)
	}

	return doc, nil
}

func (c *ReportController) GetReports(ctx context.Context, userID string) ([]*ReportRecord, error) {
	return c.reportRepo.GetByUser(ctx, userID)
}

// LoadBlob streams a stored report back to its owner. The path prefix
// check keeps one user's blobs invisible to another.
func (c *ReportController) LoadBlob(userID, relPath string) ([]byte, error) {
	log := c.log.Function("LoadBlob")

	prefix := path.Join("users", userID) + "/"
	if !strings.HasPrefix(path.Clean(strings.ReplaceAll(relPath, "\\", "/")), prefix) {
		return nil, log.Error("blob does not belong to user", "userID", userID, "path", relPath)
	}

	return c.store.LoadReportBlob(relPath)
}

func (c *ReportController) completedRun(ctx context.Context, userID, runID string) (*TestRun, catalog.TestDefinition, error) {
	log := c.log.Function("completedRun")

	run, err := c.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, catalog.TestDefinition{}, err
	}
	if run.UserID != userID {
		return nil, catalog.TestDefinition{},
			log.Error("run does not belong to user", "runID", runID, "userID", userID)
	}
	if run.Status != RunStatusCompleted || run.Result == nil {
		return nil, catalog.TestDefinition{},
			log.Error("run has no result to export", "runID", runID, "status", run.Status)
	}

	def, ok := catalog.Lookup(run.TestKey)
	if !ok {
		return nil, catalog.TestDefinition{},
			log.Error("run references unknown test", "runID", runID, "testKey", run.TestKey)
	}

	return run, def, nil
}

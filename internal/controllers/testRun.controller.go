package controllers

import (
	"context"
	"fmt"
	"strings"

	"server/internal/catalog"
	"server/internal/census"
	"server/internal/compliance"
	"server/internal/exports"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"
)

// WSManager interface for WebSocket operations to avoid import cycles
type WSManager interface {
	SendRunProgress(runID string, data map[string]any)
	SendRunComplete(runID string, result map[string]any)
	SendRunError(runID string, errorMsg string)
}

type TestRunController struct {
	runRepo            repositories.TestRunRepository
	purchaseRepo       repositories.PurchaseRepository
	compliance         *compliance.Client
	archiver           *census.Archiver
	transactionService *services.TransactionService
	wsManager          WSManager
	log                logger.Logger
}

func NewTestRunController(
	runRepo repositories.TestRunRepository,
	purchaseRepo repositories.PurchaseRepository,
	complianceClient *compliance.Client,
	archiver *census.Archiver,
	transactionService *services.TransactionService,
	wsManager WSManager,
) *TestRunController {
	return &TestRunController{
		runRepo:            runRepo,
		purchaseRepo:       purchaseRepo,
		compliance:         complianceClient,
		archiver:           archiver,
		transactionService: transactionService,
		wsManager:          wsManager,
		log:                logger.New("testRunController"),
	}
}

// Submit validates a census upload, runs it against the compliance
// engine, and records the outcome. All local validation happens before
// anything leaves the process: a bad file never consumes a purchase and
// never touches the network.
func (c *TestRunController) Submit(ctx context.Context, token string, req SubmitTestRequest) (*TestRun, error) {
	log := c.log.Function("Submit")

	def, ok := catalog.Lookup(req.TestKey)
	if !ok {
		return nil, log.Error("unknown test", "testKey", req.TestKey)
	}

	if !census.AllowedExtension(req.FileName) {
		return nil, log.Error("unsupported census file type",
			"fileName", req.FileName, "testKey", req.TestKey)
	}

	if def.RequiresPlanYear {
		if req.PlanYear == nil {
			return nil, log.Error("plan year is required", "testKey", req.TestKey)
		}
		if !catalog.ValidPlanYear(*req.PlanYear) {
			return nil, log.Error("plan year out of range",
				"testKey", req.TestKey, "planYear", *req.PlanYear)
		}
	}

	file, err := census.Decode(req.FileName, req.FileData)
	if err != nil {
		return nil, log.Err("census file failed validation", err, "fileName", req.FileName)
	}
	file.NormalizeDates()

	purchase, err := c.purchaseRepo.GetEntitlement(ctx, req.UserID, req.TestKey)
	if err != nil {
		return nil, err
	}
	if purchase == nil || !purchase.Unlocked || purchase.Used {
		return nil, log.Error("test is not unlocked for user",
			"userID", req.UserID, "testKey", req.TestKey)
	}

	run := &TestRun{
		UserID:   req.UserID,
		TestKey:  req.TestKey,
		PlanYear: req.PlanYear,
		FileName: req.FileName,
		RowCount: len(file.Rows),
		Status:   RunStatusRunning,
	}
	if err := c.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	c.wsManager.SendRunProgress(run.ID, map[string]any{
		"phase":    "submitting",
		"rowCount": len(file.Rows),
	})

	result, err := c.submitNormalized(ctx, token, def, req, file)
	if err != nil {
		message := err.Error()
		run.Status = RunStatusFailed
		run.ErrorMessage = &message
		if updateErr := c.runRepo.Update(ctx, run); updateErr != nil {
			log.Er("failed to record run failure", updateErr, "runID", run.ID)
		}
		c.wsManager.SendRunError(run.ID, message)
		return run, err
	}

	// Result persistence and entitlement consumption commit together.
	err = c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		run.Status = RunStatusCompleted
		run.Result = result
		if err := c.runRepo.Update(txCtx, run); err != nil {
			return err
		}
		return c.purchaseRepo.MarkUsed(txCtx, req.UserID, req.TestKey)
	})
	if err != nil {
		c.wsManager.SendRunError(run.ID, "failed to record test result")
		return nil, err
	}

	c.archive(ctx, run.ID, file)

	c.wsManager.SendRunComplete(run.ID, map[string]any{
		"testKey": req.TestKey,
		"outcome": result.Outcome(),
	})

	return run, nil
}

// SubmitBatch runs several tests against the same census upload in
// sequence. One failing test does not stop the rest; each run carries
// its own status.
func (c *TestRunController) SubmitBatch(ctx context.Context, token string, reqs []SubmitTestRequest) []*TestRun {
	log := c.log.Function("SubmitBatch")

	runs := make([]*TestRun, 0, len(reqs))
	for _, req := range reqs {
		run, err := c.Submit(ctx, token, req)
		if err != nil {
			log.Warn("batch item failed", "testKey", req.TestKey, "error", err)
			if run == nil {
				message := err.Error()
				run = &TestRun{
					UserID:       req.UserID,
					TestKey:      req.TestKey,
					PlanYear:     req.PlanYear,
					FileName:     req.FileName,
					Status:       RunStatusFailed,
					ErrorMessage: &message,
				}
			}
		}
		runs = append(runs, run)
	}

	return runs
}

func (c *TestRunController) GetRun(ctx context.Context, userID, runID string) (*TestRun, error) {
	log := c.log.Function("GetRun")

	run, err := c.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, log.Error("run does not belong to user", "runID", runID, "userID", userID)
	}

	return run, nil
}

func (c *TestRunController) GetRuns(ctx context.Context, userID string) ([]*TestRun, error) {
	return c.runRepo.GetByUser(ctx, userID)
}

// submitNormalized re-encodes the decoded, date-normalized census as
// CSV so the engine always receives one canonical format regardless of
// what the user uploaded.
func (c *TestRunController) submitNormalized(
	ctx context.Context,
	token string,
	def catalog.TestDefinition,
	req SubmitTestRequest,
	file *census.File,
) (TestResult, error) {
	rows := make([][]string, 0, len(file.Rows)+1)
	rows = append(rows, file.Headers)
	rows = append(rows, file.Rows...)

	encoded, err := exports.TemplateCSV(rows)
	if err != nil {
		return nil, err
	}

	fileName := csvFileName(req.FileName)
	return c.compliance.SubmitCensus(ctx, token, def, req.PlanYear, fileName, []byte(encoded))
}

func (c *TestRunController) archive(ctx context.Context, runID string, file *census.File) {
	if c.archiver == nil {
		return
	}

	if _, err := c.archiver.ArchiveRows(ctx, runID, file); err != nil {
		c.log.Function("archive").Warn("census archive failed", "runID", runID, "error", err)
	}
}

func csvFileName(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx > 0 {
		return fmt.Sprintf("%s.csv", fileName[:idx])
	}
	return fileName + ".csv"
}

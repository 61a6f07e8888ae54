package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"server/config"
	"server/internal/compliance"
	"server/internal/database"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"
	"server/internal/websockets"
)

type runHarness struct {
	controller   *TestRunController
	runRepo      repositories.TestRunRepository
	purchaseRepo repositories.PurchaseRepository
	apiCalls     *int32
}

func newRunHarness(t *testing.T, handler http.HandlerFunc) *runHarness {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&TestRun{}, &PurchasedTest{}))

	db := database.DB{SQL: gormDB}

	var apiCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	runRepo := repositories.NewTestRun(db)
	purchaseRepo := repositories.NewPurchase(db)

	return &runHarness{
		controller: NewTestRunController(
			runRepo,
			purchaseRepo,
			compliance.NewClient(config.Config{ComplianceAPIURL: server.URL}),
			nil,
			services.NewTransactionService(db),
			websockets.New(),
		),
		runRepo:      runRepo,
		purchaseRepo: purchaseRepo,
		apiCalls:     &apiCalls,
	}
}

func passedResponse(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"Test Results": map[string]any{
			"adpTest": map[string]any{"Test Result": "Passed"},
		},
	})
}

func submitRequest(planYear *int) SubmitTestRequest {
	return SubmitTestRequest{
		UserID:   "user-1",
		TestKey:  "adpTest",
		PlanYear: planYear,
		FileName: "census.csv",
		FileData: []byte("last_name,first_name,compensation\nSmith,Jane,85000\n"),
	}
}

func TestSubmit_CompletesRunAndConsumesPurchase(t *testing.T) {
	h := newRunHarness(t, passedResponse)
	ctx := context.Background()
	planYear := 2025

	require.NoError(t, h.purchaseRepo.Grant(ctx, "user-1", "adpTest"))

	run, err := h.controller.Submit(ctx, "token", submitRequest(&planYear))
	require.NoError(t, err)

	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, "Passed", run.Result.Outcome())
	assert.Equal(t, 1, run.RowCount)

	purchase, err := h.purchaseRepo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	assert.True(t, purchase.Used)
	assert.False(t, purchase.Unlocked)

	// A consumed purchase blocks the next submission.
	_, err = h.controller.Submit(ctx, "token", submitRequest(&planYear))
	require.Error(t, err)
}

func TestSubmit_RejectsBadExtensionBeforeAnySideEffect(t *testing.T) {
	h := newRunHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("compliance API must not be called for an invalid file")
	})
	ctx := context.Background()
	planYear := 2025

	require.NoError(t, h.purchaseRepo.Grant(ctx, "user-1", "adpTest"))

	req := submitRequest(&planYear)
	req.FileName = "census.txt"

	_, err := h.controller.Submit(ctx, "token", req)
	require.Error(t, err)

	assert.Equal(t, int32(0), atomic.LoadInt32(h.apiCalls))

	runs, err := h.runRepo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, runs)

	purchase, err := h.purchaseRepo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	assert.False(t, purchase.Used)
	assert.True(t, purchase.Unlocked)
}

func TestSubmit_RequiresPlanYear(t *testing.T) {
	h := newRunHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("compliance API must not be called without a plan year")
	})
	ctx := context.Background()

	require.NoError(t, h.purchaseRepo.Grant(ctx, "user-1", "adpTest"))

	_, err := h.controller.Submit(ctx, "token", submitRequest(nil))
	require.Error(t, err)

	badYear := 1999
	_, err = h.controller.Submit(ctx, "token", submitRequest(&badYear))
	require.Error(t, err)

	assert.Equal(t, int32(0), atomic.LoadInt32(h.apiCalls))
}

func TestSubmit_RequiresUnlockedPurchase(t *testing.T) {
	h := newRunHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("compliance API must not be called without an entitlement")
	})
	planYear := 2025

	_, err := h.controller.Submit(context.Background(), "token", submitRequest(&planYear))
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(h.apiCalls))
}

func TestSubmit_APIFailureRecordsFailedRunWithoutConsumingPurchase(t *testing.T) {
	h := newRunHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{"detail": "engine unavailable"})
	})
	ctx := context.Background()
	planYear := 2025

	require.NoError(t, h.purchaseRepo.Grant(ctx, "user-1", "adpTest"))

	run, err := h.controller.Submit(ctx, "token", submitRequest(&planYear))
	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, RunStatusFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)

	purchase, err := h.purchaseRepo.GetEntitlement(ctx, "user-1", "adpTest")
	require.NoError(t, err)
	assert.False(t, purchase.Used)
	assert.True(t, purchase.Unlocked)
}

func TestSubmitBatch_ContinuesPastFailures(t *testing.T) {
	h := newRunHarness(t, passedResponse)
	ctx := context.Background()
	planYear := 2025

	require.NoError(t, h.purchaseRepo.Grant(ctx, "user-1", "adpTest"))

	good := submitRequest(&planYear)
	bad := submitRequest(&planYear)
	bad.TestKey = "acpTest" // not purchased

	runs := h.controller.SubmitBatch(ctx, "token", []SubmitTestRequest{bad, good})
	require.Len(t, runs, 2)
	assert.Equal(t, RunStatusFailed, runs[0].Status)
	assert.Equal(t, RunStatusCompleted, runs[1].Status)
}

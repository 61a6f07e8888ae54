package app

import (
	"server/config"
	"server/internal/census"
	"server/internal/compliance"
	"server/internal/controllers"
	"server/internal/database"
	"server/internal/handlers/middleware"
	"server/internal/logger"
	"server/internal/repositories"
	"server/internal/services"
	"server/internal/storage"
	"server/internal/websockets"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	Config     config.Config

	// Services
	TransactionService *services.TransactionService
	AutosaveService    *services.AutosaveService
	Compliance         *compliance.Client
	ArtifactStore      *storage.ArtifactStore
	Archiver           *census.Archiver

	// Repositories
	RunRepo      repositories.TestRunRepository
	PurchaseRepo repositories.PurchaseRepository
	ConsentRepo  repositories.ConsentRepository
	ReportRepo   repositories.ReportRepository
	AccountRepo  repositories.AccountRepository

	// Controllers
	TestRunController  *controllers.TestRunController
	ReportController   *controllers.ReportController
	CheckoutController *controllers.CheckoutController
	AccountController  *controllers.AccountController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	// Initialize services
	transactionService := services.NewTransactionService(db)
	autosaveService := services.NewAutosaveService()
	complianceClient := compliance.NewClient(config)

	artifactStore, err := storage.NewArtifactStore(config)
	if err != nil {
		return &App{}, log.Err("failed to create artifact store", err)
	}

	var archiver *census.Archiver
	if config.CensusArchiveEnabled() {
		archiver, err = census.NewArchiver(config)
		if err != nil {
			return &App{}, log.Err("failed to create census archiver", err)
		}
	}

	// Initialize repositories
	runRepo := repositories.NewTestRun(db)
	purchaseRepo := repositories.NewPurchase(db)
	consentRepo := repositories.NewConsent(db)
	reportRepo := repositories.NewReport(db)
	accountRepo := repositories.NewAccount(db)

	middleware := middleware.New(db, config, accountRepo)
	websocket := websockets.New()

	// Initialize controllers with repositories and services
	testRunController := controllers.NewTestRunController(
		runRepo, purchaseRepo, complianceClient, archiver, transactionService, websocket)
	reportController := controllers.NewReportController(
		runRepo, reportRepo, consentRepo, complianceClient, artifactStore)
	checkoutController := controllers.NewCheckoutController(
		purchaseRepo, complianceClient, transactionService)
	accountController := controllers.NewAccountController(accountRepo, autosaveService)

	app := &App{
		Database:           db,
		Config:             config,
		Middleware:         middleware,
		Websocket:          websocket,
		TransactionService: transactionService,
		AutosaveService:    autosaveService,
		Compliance:         complianceClient,
		ArtifactStore:      artifactStore,
		Archiver:           archiver,
		RunRepo:            runRepo,
		PurchaseRepo:       purchaseRepo,
		ConsentRepo:        consentRepo,
		ReportRepo:         reportRepo,
		AccountRepo:        accountRepo,
		TestRunController:  testRunController,
		ReportController:   reportController,
		CheckoutController: checkoutController,
		AccountController:  accountController,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.TransactionService,
		a.AutosaveService,
		a.Compliance,
		a.ArtifactStore,
		a.Middleware,
		a.RunRepo,
		a.PurchaseRepo,
		a.ConsentRepo,
		a.ReportRepo,
		a.AccountRepo,
		a.TestRunController,
		a.ReportController,
		a.CheckoutController,
		a.AccountController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	// Autosave first so pending writes land before the database closes.
	if a.AutosaveService != nil {
		a.AutosaveService.Close()
	}

	if a.Archiver != nil {
		if archiveErr := a.Archiver.Close(); archiveErr != nil {
			err = archiveErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}

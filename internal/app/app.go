package app

import (
	"fmt"
	"net/http"

	"budget-tracker-go/internal/config"
	"budget-tracker-go/internal/db"
	budgetsdomain "budget-tracker-go/internal/domain/budgets"
	dashboarddomain "budget-tracker-go/internal/domain/dashboard"
	transactionsdomain "budget-tracker-go/internal/domain/transactions"
	userdomain "budget-tracker-go/internal/domain/user"
	"budget-tracker-go/internal/identity"
	"budget-tracker-go/internal/repository/inmemory"
	budgetsrepo "budget-tracker-go/internal/repository/postgres/budgets"
	transactionsrepo "budget-tracker-go/internal/repository/postgres/transactions"
	userrepo "budget-tracker-go/internal/repository/postgres/user"
	"budget-tracker-go/internal/transport/httpserver"
	"budget-tracker-go/internal/transport/httpserver/handler"
	"budget-tracker-go/internal/transport/httpserver/middleware"
	"budget-tracker-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger, configPath string) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log, configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := db.MigrateUp(cfg.DB, log); err != nil {
			closeDB(dbConn)
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	log.Info("app: initializing services")
	transactionsRepo := transactionsrepo.NewPostgres(dbConn)
	budgetsRepo := budgetsrepo.NewPostgres(dbConn)
	usersRepo := userrepo.NewPostgres(dbConn)

	transactionsService := transactionsdomain.NewService(transactionsRepo, inmemory.NewCategoriesCache(), cfg.Cache.CategoriesTTL)
	aggregator := budgetsdomain.NewAggregator(budgetsRepo, cfg.Budget.StrictSpend, log)
	budgetsService := budgetsdomain.NewService(budgetsRepo, aggregator, cfg.Budget.AggregateConcurrency)
	dashboardService := dashboarddomain.NewService(transactionsService)
	usersService := userdomain.NewService(usersRepo)

	identityClient := identity.NewClient(cfg.Supabase)
	auth := middleware.NewSupabaseAuth(cfg.Supabase, identityClient, usersService, log)
	if cfg.Supabase.SkipAuth {
		log.Warn("app: authentication disabled, all requests use the mock user", "user_id", cfg.Supabase.MockUserID)
	}

	log.Info("app: initializing router")
	handlers := handler.New(identityClient, usersService, transactionsService, budgetsService, dashboardService, log)
	router := httpserver.NewRouter(cfg, handlers, auth)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(dbConn *gorm.DB) {
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

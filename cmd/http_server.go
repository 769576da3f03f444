package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/activity"
	activityPostgres "github.com/liuqy/experiment-management/internal/activity/postgres"
	"github.com/liuqy/experiment-management/internal/auth"
	authPostgres "github.com/liuqy/experiment-management/internal/auth/postgres"
	"github.com/liuqy/experiment-management/internal/batch"
	batchPostgres "github.com/liuqy/experiment-management/internal/batch/postgres"
	"github.com/liuqy/experiment-management/internal/competitorfile"
	competitorfilePostgres "github.com/liuqy/experiment-management/internal/competitorfile/postgres"
	"github.com/liuqy/experiment-management/internal/experiment"
	experimentPostgres "github.com/liuqy/experiment-management/internal/experiment/postgres"
	"github.com/liuqy/experiment-management/internal/fingerblood"
	fingerbloodPostgres "github.com/liuqy/experiment-management/internal/fingerblood/postgres"
	"github.com/liuqy/experiment-management/internal/person"
	personPostgres "github.com/liuqy/experiment-management/internal/person/postgres"
	"github.com/liuqy/experiment-management/internal/sensor"
	sensorPostgres "github.com/liuqy/experiment-management/internal/sensor/postgres"
	"github.com/liuqy/experiment-management/internal/transport/rest"
	"github.com/liuqy/experiment-management/internal/user"
	userPostgres "github.com/liuqy/experiment-management/internal/user/postgres"
	"github.com/liuqy/experiment-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	cfg := deps.Config

	activityRepo := activityPostgres.NewActivityRepository(deps.GormDB)
	activitySvc := activity.NewService(activityRepo, lg)

	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenTTL)
	authRepo := authPostgres.NewRepository(deps.GormDB)
	authSvc := auth.NewService(authRepo, tokenGen, cfg.Security.BCryptCost, cfg.Security.MinPasswordLength, lg)

	fileStorage := competitorfile.NewStorage(cfg.Storage.UploadDir)

	handlers := rest.Handlers{
		Auth:           auth.NewHandler(authSvc),
		User:           user.NewHandler(user.NewService(userPostgres.NewUserRepository(deps.GormDB), activitySvc, lg)),
		Batch:          batch.NewHandler(batch.NewService(batchPostgres.NewBatchRepository(deps.GormDB), activitySvc, lg)),
		Person:         person.NewHandler(person.NewService(personPostgres.NewPersonRepository(deps.GormDB), activitySvc, lg)),
		Experiment:     experiment.NewHandler(experiment.NewService(experimentPostgres.NewExperimentRepository(deps.GormDB), activitySvc, lg)),
		CompetitorFile: competitorfile.NewHandler(competitorfile.NewService(competitorfilePostgres.NewCompetitorFileRepository(deps.GormDB), fileStorage, activitySvc, lg)),
		FingerBlood:    fingerblood.NewHandler(fingerblood.NewService(fingerbloodPostgres.NewFingerBloodRepository(deps.GormDB), activitySvc, lg)),
		Sensor:         sensor.NewHandler(sensor.NewService(sensorPostgres.NewSensorRepository(deps.GormDB), activitySvc, lg)),
		Activity:       activity.NewHandler(activitySvc),
	}

	rbac := auth.NewRBACAuthorization(lg)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, cfg, handlers, rbac, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	if err := ensureUploadDir(config.Storage.UploadDir); err != nil {
		return nil, err
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pool so the ORM and the raw handle share
// connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}

func ensureUploadDir(uploadDir string) error {
	dir := filepath.Join(uploadDir, "competitor_files")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return nil
}

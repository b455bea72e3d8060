package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"saccos-core/internal/config"
	"saccos-core/internal/database"
	"saccos-core/internal/handlers"
	"saccos-core/internal/notify"
	"saccos-core/internal/repositories"
	"saccos-core/internal/services"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Migration command (up/down/version)")
	steps := flag.Int("steps", 0, "Number of migration steps (0 means all)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg, logger)
	if err != nil {
		logger.Fatal("error connecting to database", zap.Error(err))
	}
	defer db.Close()

	if *migrateCmd != "" {
		handleMigration(cfg, logger, *migrateCmd, *steps)
		return
	}

	loanRepo := repositories.NewLoanRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	productRepo := repositories.NewProductRepository(db)
	guarantorRepo := repositories.NewGuarantorRepository(db)
	voteRepo := repositories.NewVoteRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	deductionRepo := repositories.NewDeductionRepository(db)
	reconciliationRepo := repositories.NewReconciliationRepository(db)

	notifier := notify.NewLogNotifier(logger)

	workflowService := services.NewLoanWorkflowService(
		db, cfg.Workflow,
		loanRepo, memberRepo, productRepo, guarantorRepo, voteRepo, transactionRepo,
		notifier, logger,
	)
	guarantorService := services.NewGuarantorService(db, loanRepo, guarantorRepo, notifier, logger)
	deductionService := services.NewDeductionService(db, cfg.Workflow, memberRepo, loanRepo, deductionRepo, logger)
	reconciliationService := services.NewReconciliationService(db, memberRepo, deductionRepo, reconciliationRepo, logger)

	router := handlers.SetupRouter(handlers.Handlers{
		Loan:           handlers.NewLoanHandler(workflowService),
		Guarantor:      handlers.NewGuarantorHandler(guarantorService),
		Deduction:      handlers.NewDeductionHandler(deductionService),
		Reconciliation: handlers.NewReconciliationHandler(reconciliationService),
	}, logger)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("server is running", zap.String("address", cfg.ServerAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func handleMigration(cfg *config.Config, logger *zap.Logger, command string, steps int) {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", cfg.Migration.Dir),
		cfg.GetMigrationDBURL(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "no change") {
			logger.Info("no migration changes to apply")
			return
		}
		logger.Fatal("failed to initialize migrate", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			if verErr == migrate.ErrNilVersion {
				logger.Info("no migrations have been applied yet")
				return
			}
			logger.Fatal("failed to get version", zap.Error(verErr))
		}
		logger.Info("current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return
	default:
		logger.Fatal("invalid migration command", zap.String("command", command))
	}

	if err != nil {
		if err == migrate.ErrNoChange {
			logger.Info("no migration changes to apply")
			return
		}
		logger.Fatal("migration failed", zap.Error(err))
	}

	logger.Info("migration completed successfully")
}

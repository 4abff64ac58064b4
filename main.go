package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/accrual"
	appconfig "github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/controllers"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/controllers/admins"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/database"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/middleware"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/routes"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/store"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/utils"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Connect to the database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto-migrate only in development to avoid accidental production schema changes
	if cfg.Environment == "development" {
		log.Println("Running in development mode - performing auto-migration")
		if err := db.AutoMigrate(
			&models.Account{},
			&models.Investment{},
			&models.Transaction{},
			&models.AccrualRun{},
		); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		log.Println("Auto-migration completed successfully")
	} else {
		log.Println("Running in production mode - skipping auto-migration")
	}

	// Wire the accrual job
	runnerCfg := accrual.RunnerConfig{
		Workers:        cfg.AccrualWorkers,
		BatchSize:      cfg.AccrualBatchSize,
		AccountTimeout: cfg.AccountTimeout,
	}
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		if err := rc.Ping(context.Background()).Err(); err != nil {
			// Run lock degrades to the DB-side guard; don't fail startup.
			log.Printf("warning: redis ping failed: %v", err)
		} else {
			runnerCfg.Locker = accrual.NewRedisRunLock(rc)
		}
	}
	if cfg.R2Configured() {
		runnerCfg.Archiver = utils.NewR2Archiver(cfg)
	}

	accountStore := store.NewAccountStore(db)
	runStore := store.NewAccrualRunStore(db)
	runner := accrual.NewRunner(accountStore, runStore, accrual.NewPolicy(cfg), runnerCfg)

	cron := controllers.NewCronController(cfg, runner)
	accrualRuns := admins.NewAccrualRunsController(runStore)

	// Initialize router
	router := routes.InitRouter(cfg, cron, accrualRuns)

	// Wrap router with global middleware: Logging -> Request ID -> Max Body -> Recovery
	handler := middleware.RequestLogMiddleware(
		middleware.RequestIDMiddleware(
			middleware.MaxBodyMiddleware(
				middleware.RecoveryMiddleware(router),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

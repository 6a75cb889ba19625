package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timetracker-backend/internal/api/routes"
	"timetracker-backend/internal/config"
	"timetracker-backend/internal/database"
	"timetracker-backend/internal/service"
	"timetracker-backend/internal/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	_ "timetracker-backend/docs" // This is needed for swag
)

//	@title			Time Tracker Backend API
//	@version		1.0
//	@description	Multi-tenant time tracking backend with organization-scoped data, subscription lifecycle mirroring, and seat-based billing synchronization.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	http://www.example.com/support
//	@contact.email	support@example.com

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:7009
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables from .env file in development
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, &database.Options{
		AutoMigrate:       true,
		EnableRowPolicies: cfg.EnableRowPolicies,
	})
	if err != nil {
		logrus.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router, reconciliationService := routes.SetupRoutes(db, cfg)

	// Run the periodic billing reconciliation until shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go runReconciliationLoop(ctx, reconciliationService, cfg.ReconcileInterval())

	// Start server
	port := cfg.Port
	if port == "" {
		port = "7009"
	}

	logrus.Infof("Starting server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatal("Failed to start server:", err)
	}
}

func runReconciliationLoop(ctx context.Context, svc *service.ReconciliationService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// The job runs on behalf of no tenant; the system context bypasses
	// organization scoping for the sweep.
	ctx = tenancy.WithSystem(ctx)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Stopping billing reconciliation loop")
			return
		case <-ticker.C:
			if _, err := svc.ReconcileAll(ctx); err != nil {
				logrus.WithError(err).Error("Billing reconciliation run failed")
			}
		}
	}
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

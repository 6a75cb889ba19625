package routes

import (
	"log"

	"timetracker-backend/internal/api/handlers"
	"timetracker-backend/internal/api/middleware"
	"timetracker-backend/internal/auth"
	"timetracker-backend/internal/config"
	"timetracker-backend/internal/database/models"
	"timetracker-backend/internal/repository"
	"timetracker-backend/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRoutes configures all the routes for the application. It returns
// the router together with the reconciliation service so main can drive
// the periodic job.
func SetupRoutes(db *gorm.DB, cfg *config.Config) (*gin.Engine, *service.ReconciliationService) {
	// Create router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Plan catalog
	plans, err := config.LoadPlans(cfg.PlansFile)
	if err != nil {
		log.Fatalf("Failed to load plan catalog: %v", err)
	}

	// Initialize repositories
	organizationRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	eventRepo := repository.NewSubscriptionEventRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	timeEntryRepo := repository.NewTimeEntryRepository(db)

	// Initialize services
	provider := service.NewHTTPBillingProvider(cfg)
	seatSyncService := service.NewSeatSyncService(organizationRepo, membershipRepo, eventRepo, provider, plans, cfg.BillingProrationEnabled)
	subscriptionService := service.NewSubscriptionService(eventRepo, organizationRepo, seatSyncService)
	webhookService := service.NewWebhookService(eventRepo, subscriptionService, cfg.BillingWebhookSecret)
	reconciliationService := service.NewReconciliationService(organizationRepo, provider)
	organizationService := service.NewOrganizationService(organizationRepo, membershipRepo, eventRepo, plans)
	membershipService := service.NewMembershipService(membershipRepo, userRepo, organizationRepo, seatSyncService)
	projectService := service.NewProjectService(projectRepo)
	timeEntryService := service.NewTimeEntryService(timeEntryRepo, projectRepo, membershipRepo)

	// Initialize auth
	authService := auth.NewService(cfg.JWTSecret)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, userRepo)
	organizationHandler := handlers.NewOrganizationHandler(organizationService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	projectHandler := handlers.NewProjectHandler(projectService)
	timeEntryHandler := handlers.NewTimeEntryHandler(timeEntryService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	billingHandler := handlers.NewBillingHandler(subscriptionService, reconciliationService, seatSyncService)

	// Health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)

	// Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Webhook ingestion is authenticated by signature, not by bearer token
	router.POST("/webhooks/billing", webhookHandler.HandleBillingWebhook)

	if !cfg.IsProduction() {
		router.POST("/auth/dev-token", authHandler.DevToken)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAuth(authService, userRepo))
	{
		// Routes that need a user but no active organization
		v1.POST("/organizations", organizationHandler.CreateOrganization)
		v1.POST("/invitations/accept", membershipHandler.AcceptInvitation)

		// Routes scoped to the active organization
		org := v1.Group("")
		org.Use(middleware.RequireOrganization(membershipRepo))
		{
			org.GET("/organization", organizationHandler.GetOrganization)
			org.PUT("/organization", organizationHandler.UpdateOrganization)
			org.DELETE("/organization", organizationHandler.OffboardOrganization)

			org.GET("/organization/members", membershipHandler.ListMembers)
			org.POST("/organization/members", membershipHandler.InviteMember)
			org.POST("/organization/members/:id/suspend", membershipHandler.SuspendMember)
			org.POST("/organization/members/:id/reactivate", membershipHandler.ReactivateMember)
			org.PUT("/organization/members/:id/role", membershipHandler.UpdateMemberRole)
			org.DELETE("/organization/members/:id", membershipHandler.RemoveMember)

			// Operator-facing billing endpoints, admin only
			billing := org.Group("/organization/billing")
			billing.Use(middleware.RequireRole(models.MembershipRoleAdmin))
			{
				billing.GET("/events", organizationHandler.ListSubscriptionEvents)
				billing.POST("/events/:id/reprocess", billingHandler.ReprocessEvent)
				billing.POST("/sync-seats", billingHandler.SyncSeats)
				billing.POST("/reconcile", billingHandler.Reconcile)
			}

			// Business data is gated on subscription health
			gated := org.Group("")
			gated.Use(middleware.RequireActiveSubscription(organizationRepo, cfg.BillingGracePeriod()))
			{
				gated.GET("/projects", projectHandler.ListProjects)
				gated.POST("/projects", projectHandler.CreateProject)
				gated.GET("/projects/:id", projectHandler.GetProject)
				gated.PUT("/projects/:id", projectHandler.UpdateProject)
				gated.DELETE("/projects/:id", projectHandler.DeleteProject)
				gated.GET("/projects/:id/time-entries", timeEntryHandler.ListTimeEntries)

				gated.POST("/time-entries", timeEntryHandler.CreateTimeEntry)
				gated.PUT("/time-entries/:id", timeEntryHandler.UpdateTimeEntry)
				gated.DELETE("/time-entries/:id", timeEntryHandler.DeleteTimeEntry)
			}
		}
	}

	return router, reconciliationService
}

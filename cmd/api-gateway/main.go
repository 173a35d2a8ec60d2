package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/kita-admin-api/api/swagger"
	"github.com/noah-isme/kita-admin-api/internal/handler"
	"github.com/noah-isme/kita-admin-api/internal/middleware"
	"github.com/noah-isme/kita-admin-api/internal/models"
	"github.com/noah-isme/kita-admin-api/internal/repository"
	"github.com/noah-isme/kita-admin-api/internal/service"
	"github.com/noah-isme/kita-admin-api/pkg/cache"
	"github.com/noah-isme/kita-admin-api/pkg/config"
	"github.com/noah-isme/kita-admin-api/pkg/database"
	"github.com/noah-isme/kita-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/kita-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/kita-admin-api/pkg/middleware/requestid"
)

// @title Kita Admin API
// @version 1.0.0
// @description Multi-tenant kindergarten administration backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Pickup.RateLimitEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	childRepo := repository.NewChildRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	healthRepo := repository.NewHealthRepository(db)
	behaviorRepo := repository.NewBehaviorRepository(db)
	personRepo := repository.NewAuthorizedPersonRepository(db)
	pickupRecordRepo := repository.NewPickupRecordRepository(db)
	pickupCodeRepo := repository.NewPickupCodeRepository(db)
	attemptRepo := repository.NewVerifyAttemptRepository(redisClient)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "kita-admin-api",
	})
	accessSvc := service.NewAccessService(childRepo, staffRepo, metricsSvc, logr)
	childSvc := service.NewChildService(childRepo, accessSvc, validate, logr)
	groupSvc := service.NewGroupService(groupRepo, staffRepo, accessSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, accessSvc, validate, logr)
	consentSvc := service.NewConsentService(consentRepo, accessSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, accessSvc, validate, logr)
	healthSvc := service.NewHealthService(healthRepo, accessSvc, validate, logr)
	behaviorSvc := service.NewBehaviorService(behaviorRepo, accessSvc, validate, logr)
	personSvc := service.NewAuthorizedPersonService(personRepo, accessSvc, validate, logr)
	pickupRecordSvc := service.NewPickupRecordService(pickupRecordRepo, accessSvc, validate, logr)
	pickupCodeSvc := service.NewPickupCodeService(pickupCodeRepo, childRepo, accessSvc, attemptRepo, userRepo, metricsSvc, validate, logr, service.PickupCodeConfig{
		RateLimitEnabled: cfg.Pickup.RateLimitEnabled,
		RateLimitPerHour: cfg.Pickup.RateLimitPerHour,
	})
	userSvc := service.NewUserService(userRepo, staffRepo, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc, handler.SessionCookieConfig{
		Name:   cfg.JWT.CookieName,
		MaxAge: int(cfg.JWT.Expiration.Seconds()),
		Secure: cfg.Env == config.EnvProduction,
	})
	childHandler := handler.NewChildHandler(childSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	consentHandler := handler.NewConsentHandler(consentSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	healthHandler := handler.NewHealthRecordHandler(healthSvc)
	behaviorHandler := handler.NewBehaviorHandler(behaviorSvc)
	personHandler := handler.NewAuthorizedPersonHandler(personSvc)
	pickupHandler := handler.NewPickupHandler(pickupCodeSvc, pickupRecordSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	session := middleware.Session(authSvc, cfg.JWT.CookieName)

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", session, authHandler.Logout)
			auth.POST("/change-password", session, authHandler.ChangePassword)
			auth.GET("/me", session, authHandler.Me)
		}

		users := api.Group("/users", session)
		{
			users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
			users.GET("/:id", middleware.RequireRolesOrSelf(models.RoleAdmin), userHandler.Get)
			users.POST("", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(userRepo, models.AuditActionMutation, "user"), userHandler.Create)
		}

		childAudit := middleware.Audit(userRepo, models.AuditActionMutation, "child")

		children := api.Group("/children", session)
		{
			children.GET("", childHandler.List)
			children.GET("/:id", childHandler.Get)
			children.POST("", childAudit, childHandler.Create)
			children.PUT("/:id", childAudit, childHandler.Update)
			children.DELETE("/:id", childAudit, childHandler.Deactivate)

			children.GET("/:id/consents", consentHandler.ListByChild)
			children.POST("/:id/consents", consentHandler.Create)

			children.GET("/:id/medications", healthHandler.ListMedications)
			children.POST("/:id/medications", healthHandler.CreateMedication)
			children.GET("/:id/chronic-diseases", healthHandler.ListDiseases)
			children.POST("/:id/chronic-diseases", healthHandler.CreateDisease)

			children.GET("/:id/behavioral-info", behaviorHandler.ListByChild)
			children.POST("/:id/behavioral-info", behaviorHandler.Create)

			children.GET("/:id/authorized-persons", personHandler.ListByChild)
			children.POST("/:id/authorized-persons", personHandler.Create)

			children.GET("/:id/pickup-records", pickupHandler.ListRecords)
			children.POST("/:id/pickup-records", pickupHandler.CreateRecord)

			children.GET("/:id/pickup-code", pickupHandler.GetOrCreateCode)
		}

		groups := api.Group("/groups", session)
		{
			groups.GET("", groupHandler.List)
			groups.GET("/:id", groupHandler.Get)
			groups.POST("", groupHandler.Create)
			groups.PUT("/:id", groupHandler.Update)
			groups.DELETE("/:id", groupHandler.Delete)
		}

		staff := api.Group("/staff", session)
		{
			staff.GET("", groupHandler.ListStaff)
			staff.POST("/assign", groupHandler.AssignTeacher)
		}

		attendance := api.Group("/attendance", session)
		{
			attendance.GET("", attendanceHandler.List)
			attendance.GET("/:id", attendanceHandler.Get)
			attendance.POST("", attendanceHandler.Create)
			attendance.PUT("/:id", attendanceHandler.Update)
			attendance.DELETE("/:id", attendanceHandler.Delete)
		}

		consents := api.Group("/consents", session)
		{
			consents.PUT("/:id", consentHandler.Update)
			consents.DELETE("/:id", consentHandler.Delete)
		}

		payments := api.Group("/payments", session)
		{
			payments.GET("", paymentHandler.List)
			payments.GET("/:id", paymentHandler.Get)
			payments.POST("", paymentHandler.Create)
			payments.PUT("/:id", paymentHandler.Update)
			payments.DELETE("/:id", paymentHandler.Delete)
		}

		medications := api.Group("/medications", session)
		{
			medications.PUT("/:id", healthHandler.UpdateMedication)
			medications.DELETE("/:id", healthHandler.DeleteMedication)
		}

		diseases := api.Group("/chronic-diseases", session)
		{
			diseases.PUT("/:id", healthHandler.UpdateDisease)
			diseases.DELETE("/:id", healthHandler.DeleteDisease)
		}

		behavior := api.Group("/behavioral-info", session)
		{
			behavior.PUT("/:id", behaviorHandler.Update)
			behavior.DELETE("/:id", behaviorHandler.Delete)
		}

		persons := api.Group("/authorized-persons", session)
		{
			persons.PUT("/:id", personHandler.Update)
			persons.DELETE("/:id", personHandler.Delete)
		}

		api.POST("/pickup-codes/verify", session, pickupHandler.VerifyCode)

		cron := api.Group("/cron", middleware.CronAuth(cfg.Cron.SweepSecret))
		{
			cron.POST("/pickup-codes/sweep", pickupHandler.Sweep)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

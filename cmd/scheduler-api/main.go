package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/districtops/transport-api/api/swagger"
	"github.com/districtops/transport-api/internal/handler"
	"github.com/districtops/transport-api/internal/middleware"
	"github.com/districtops/transport-api/internal/repository"
	"github.com/districtops/transport-api/internal/service"
	"github.com/districtops/transport-api/pkg/cache"
	"github.com/districtops/transport-api/pkg/config"
	"github.com/districtops/transport-api/pkg/database"
	"github.com/districtops/transport-api/pkg/logger"
	corsmiddleware "github.com/districtops/transport-api/pkg/middleware/cors"
	reqidmiddleware "github.com/districtops/transport-api/pkg/middleware/requestid"
)

// @title District Transport Scheduling API
// @version 1.0.0
// @description Activity scheduling, conflict detection and resource availability for district transportation
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, roster caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.RosterCacheTTL, logr, true)
		}
	}
	if cacheSvc == nil {
		cacheSvc = service.NewCacheService(nil, metricsSvc, 0, logr, false)
	}

	validate := validator.New()

	activityRepo := repository.NewActivityRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)

	activitySvc := service.NewActivityService(activityRepo, driverRepo, vehicleRepo, validate, logr, metricsSvc)
	availabilitySvc := service.NewAvailabilityService(activityRepo, driverRepo, vehicleRepo, cacheSvc, cfg.Scheduler.RosterCacheTTL, logr)
	recurrenceSvc := service.NewRecurrenceService(activityRepo, activitySvc, cfg.Scheduler.MaxSeriesInstances, validate, logr, metricsSvc)
	approvalSvc := service.NewApprovalService(activityRepo, logr, metricsSvc)
	driverSvc := service.NewDriverService(driverRepo, cacheSvc, validate, logr)
	vehicleSvc := service.NewVehicleService(vehicleRepo, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(activityRepo, logr)

	if cfg.Sweeper.Enabled {
		sweeper := service.NewSweeperService(activityRepo, cfg.Sweeper, logr)
		sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	activityHandler := handler.NewActivityHandler(activitySvc, exportSvc)
	recurrenceHandler := handler.NewRecurrenceHandler(recurrenceSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	approvalHandler := handler.NewApprovalHandler(approvalSvc)
	driverHandler := handler.NewDriverHandler(driverSvc)
	vehicleHandler := handler.NewVehicleHandler(vehicleSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		activities := api.Group("/activities")
		{
			activities.GET("", activityHandler.List)
			activities.POST("", activityHandler.Create)
			activities.POST("/validate", activityHandler.Validate)
			activities.POST("/conflicts", activityHandler.Conflicts)
			activities.POST("/recurring", recurrenceHandler.Create)
			if cfg.Exports.Enabled {
				activities.GET("/export", activityHandler.Export)
			}
			activities.GET("/:id", activityHandler.Get)
			activities.PUT("/:id", activityHandler.Update)
			activities.DELETE("/:id", activityHandler.Delete)
			activities.GET("/:id/series", recurrenceHandler.GetSeries)
			activities.PUT("/:id/series", recurrenceHandler.UpdateSeries)
			activities.DELETE("/:id/series", recurrenceHandler.DeleteSeries)
			activities.POST("/:id/submit", approvalHandler.Submit)
			activities.POST("/:id/approve", approvalHandler.Approve)
			activities.POST("/:id/reject", approvalHandler.Reject)
		}

		availability := api.Group("/availability")
		{
			availability.GET("/drivers", availabilityHandler.AvailableDrivers)
			availability.GET("/drivers/:id", availabilityHandler.DriverAvailable)
			availability.GET("/vehicles", availabilityHandler.AvailableVehicles)
			availability.GET("/vehicles/:id", availabilityHandler.VehicleAvailable)
		}

		drivers := api.Group("/drivers")
		{
			drivers.GET("", driverHandler.List)
			drivers.POST("", driverHandler.Create)
			drivers.GET("/:id", driverHandler.Get)
			drivers.PUT("/:id", driverHandler.Update)
			drivers.DELETE("/:id", driverHandler.Deactivate)
		}

		vehicles := api.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.List)
			vehicles.POST("", vehicleHandler.Create)
			vehicles.GET("/:id", vehicleHandler.Get)
			vehicles.PUT("/:id", vehicleHandler.Update)
			vehicles.DELETE("/:id", vehicleHandler.Deactivate)
		}

		api.GET("/metrics/summary", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

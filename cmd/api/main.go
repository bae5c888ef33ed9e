package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sundar404/be-routine-api/api/swagger"
	"github.com/sundar404/be-routine-api/internal/handler"
	"github.com/sundar404/be-routine-api/internal/middleware"
	"github.com/sundar404/be-routine-api/internal/models"
	"github.com/sundar404/be-routine-api/internal/repository"
	"github.com/sundar404/be-routine-api/internal/service"
	"github.com/sundar404/be-routine-api/pkg/cache"
	"github.com/sundar404/be-routine-api/pkg/config"
	"github.com/sundar404/be-routine-api/pkg/database"
	"github.com/sundar404/be-routine-api/pkg/jobs"
	"github.com/sundar404/be-routine-api/pkg/logger"
	corsmiddleware "github.com/sundar404/be-routine-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sundar404/be-routine-api/pkg/middleware/requestid"
)

// @title University Routine API
// @version 1.0.0
// @description Routine slot assignment and conflict detection service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	academicYearRepo := repository.NewAcademicYearRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	routineSlotRepo := repository.NewRoutineSlotRepository(db)

	// Observability and cross-cutting services.
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Routine.CacheTTL, logr, cfg.Routine.CacheEnabled)
	}

	auditSvc := service.NewAuditService(userRepo, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: cfg.Audit.RetryDelay,
		Logger:     logr,
	}, logr, cfg.Audit.Enabled)

	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditSvc.Start(auditCtx)
	defer func() {
		stopAudit()
		auditSvc.Stop()
	}()

	// Domain services.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "be-routine-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, validate, logr)
	programSvc := service.NewProgramService(programRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	academicYearSvc := service.NewAcademicYearService(academicYearRepo, validate, logr)
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, cacheSvc, validate, logr)
	routineSvc := service.NewRoutineService(routineSlotRepo, timeSlotRepo, cacheSvc, metricsSvc, auditSvc, validate, logr, service.RoutineConfig{
		TeachingDays: cfg.Routine.TeachingDays,
		CacheTTL:     cfg.Routine.CacheTTL,
	})
	exportSvc := service.NewExportService(routineSlotRepo, timeSlotRepo, subjectRepo, teacherRepo, roomRepo, logr, cfg.Routine.ExportTitle)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentSvc)
	programHandler := handler.NewProgramHandler(programSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	academicYearHandler := handler.NewAcademicYearHandler(academicYearSvc)
	timeSlotHandler := handler.NewTimeSlotHandler(timeSlotSvc)
	routineHandler := handler.NewRoutineHandler(routineSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		protected := auth.Group("", middleware.JWT(authSvc))
		protected.POST("/logout", authHandler.Logout)
		protected.POST("/change-password", authHandler.ChangePassword)
		protected.GET("/me", authHandler.Me)
	}

	secured := api.Group("", middleware.JWT(authSvc))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	schedulers := middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler)

	users := secured.Group("/users")
	{
		users.GET("", adminOnly, userHandler.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
		users.POST("", adminOnly, userHandler.Create)
		users.PUT("/:id", adminOnly, userHandler.Update)
		users.DELETE("/:id", adminOnly, userHandler.Delete)
	}

	teachers := secured.Group("/teachers")
	{
		teachers.GET("", teacherHandler.List)
		teachers.GET("/:id", teacherHandler.Get)
		teachers.GET("/:id/routine", routineHandler.TeacherRoutine)
		teachers.POST("", adminOnly, teacherHandler.Create)
		teachers.PUT("/:id", adminOnly, teacherHandler.Update)
		teachers.DELETE("/:id", adminOnly, teacherHandler.Delete)
	}

	departments := secured.Group("/departments")
	{
		departments.GET("", departmentHandler.List)
		departments.GET("/:id", departmentHandler.Get)
		departments.POST("", adminOnly, departmentHandler.Create)
		departments.PUT("/:id", adminOnly, departmentHandler.Update)
		departments.DELETE("/:id", adminOnly, departmentHandler.Delete)
	}

	programs := secured.Group("/programs")
	{
		programs.GET("", programHandler.List)
		programs.GET("/:id", programHandler.Get)
		programs.POST("", adminOnly, programHandler.Create)
		programs.PUT("/:id", adminOnly, programHandler.Update)
		programs.DELETE("/:id", adminOnly, programHandler.Delete)
	}

	subjects := secured.Group("/subjects")
	{
		subjects.GET("", subjectHandler.List)
		subjects.GET("/:id", subjectHandler.Get)
		subjects.POST("", adminOnly, subjectHandler.Create)
		subjects.PUT("/:id", adminOnly, subjectHandler.Update)
		subjects.DELETE("/:id", adminOnly, subjectHandler.Delete)
	}

	rooms := secured.Group("/rooms")
	{
		rooms.GET("", roomHandler.List)
		rooms.GET("/:id", roomHandler.Get)
		rooms.GET("/:id/routine", routineHandler.RoomRoutine)
		rooms.POST("", adminOnly, roomHandler.Create)
		rooms.PUT("/:id", adminOnly, roomHandler.Update)
		rooms.DELETE("/:id", adminOnly, roomHandler.Delete)
	}

	academicYears := secured.Group("/academic-years")
	{
		academicYears.GET("", academicYearHandler.List)
		academicYears.GET("/current", academicYearHandler.Current)
		academicYears.GET("/:id", academicYearHandler.Get)
		academicYears.POST("", adminOnly, academicYearHandler.Create)
		academicYears.PUT("/:id", adminOnly, academicYearHandler.Update)
		academicYears.PUT("/:id/current", adminOnly, academicYearHandler.SetCurrent)
		academicYears.DELETE("/:id", adminOnly, academicYearHandler.Delete)
	}

	timeSlots := secured.Group("/time-slots")
	{
		timeSlots.GET("", timeSlotHandler.Catalog)
		timeSlots.GET("/:id", timeSlotHandler.Get)
		timeSlots.POST("", adminOnly, timeSlotHandler.Create)
		timeSlots.PUT("/reorder", adminOnly, timeSlotHandler.Reorder)
		timeSlots.PUT("/:id", adminOnly, timeSlotHandler.Update)
		timeSlots.DELETE("/:id", adminOnly, timeSlotHandler.Delete)
	}

	routines := secured.Group("/routine")
	{
		routines.GET("/section", routineHandler.SectionRoutine)
		routines.GET("/integrity", schedulers, routineHandler.Integrity)
		routines.GET("/slots/:id", routineHandler.Get)
		routines.POST("/check", schedulers, routineHandler.Check)
		routines.POST("/slots", schedulers, routineHandler.Assign)
		routines.DELETE("/slots/:id", schedulers, routineHandler.Clear)
		routines.DELETE("/spans/:spanId", schedulers, routineHandler.ClearSpan)
	}

	exports := secured.Group("/export", middleware.Audit(userRepo, "ROUTINE_EXPORT", "routine"))
	{
		exports.GET("/routine/section", exportHandler.SectionRoutine)
		exports.GET("/routine/teacher/:id", exportHandler.TeacherRoutine)
		exports.GET("/routine/room/:id", exportHandler.RoomRoutine)
	}

	secured.GET("/metrics/system", adminOnly, metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

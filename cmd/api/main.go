package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/student-marks-api/api/swagger"
	"github.com/noah-isme/student-marks-api/internal/handler"
	"github.com/noah-isme/student-marks-api/internal/middleware"
	"github.com/noah-isme/student-marks-api/internal/repository"
	"github.com/noah-isme/student-marks-api/internal/service"
	"github.com/noah-isme/student-marks-api/pkg/config"
	"github.com/noah-isme/student-marks-api/pkg/database"
	"github.com/noah-isme/student-marks-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-marks-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-marks-api/pkg/middleware/requestid"
)

// @title Student Marks API
// @version 1.0.0
// @description CRUD service for students, subjects and the marks linking them
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := buildRouter(cfg, logr, db)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB) *gin.Engine {
	metricsSvc := service.NewMetricsService()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	validate := service.NewValidator()

	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	markRepo := repository.NewMarkRepository(db)

	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	markSvc := service.NewMarkService(markRepo, studentRepo, validate, logr)

	studentHandler := handler.NewStudentHandler(studentSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	markHandler := handler.NewMarkHandler(markSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

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

	students := api.Group("/students")
	students.POST("", studentHandler.Create)
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)

	subjects := api.Group("/subjects")
	subjects.POST("", subjectHandler.Create)
	subjects.GET("", subjectHandler.List)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.PUT("/:id", subjectHandler.Update)
	subjects.DELETE("/:id", subjectHandler.Delete)

	marks := api.Group("/marks")
	marks.POST("", markHandler.Create)
	marks.GET("", markHandler.List)
	marks.GET("/student/:studentId", markHandler.ListByStudent)
	marks.GET("/:id", markHandler.Get)
	marks.PUT("/:id", markHandler.Update)
	marks.DELETE("/:id", markHandler.Delete)

	return r
}

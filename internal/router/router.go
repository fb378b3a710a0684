package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/handler"
	"github.com/stemsi/attendance-backend/internal/logger"
	"github.com/stemsi/attendance-backend/internal/middleware"
	"github.com/stemsi/attendance-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Student    *handler.StudentHandler
	Attendance *handler.AttendanceHandler
}

// SetupRouter configures the Gin engine and its route groups.
func SetupRouter(handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(logger.Component(log, "http")))
	router.Use(middleware.Brotli())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// ─── Roster ────────────────────────────────────────────────────────
	students := api.Group("/students")
	{
		students.GET("", handlers.Student.ListStudents)
		students.POST("", handlers.Student.CreateStudent)
		students.POST("/import", importGuard(cfg), handlers.Student.ImportStudents)
		students.GET("/:id", handlers.Student.GetStudent)
		students.PUT("/:id", handlers.Student.UpdateStudent)
		students.DELETE("/:id", handlers.Student.DeleteStudent)
	}

	// ─── Attendance ────────────────────────────────────────────────────
	attendance := api.Group("/attendance")
	{
		attendance.GET("", handlers.Attendance.ListAttendance)
		attendance.POST("", handlers.Attendance.RegisterAttendance)
		attendance.GET("/:id", handlers.Attendance.GetAttendance)
		attendance.PUT("/:id", handlers.Attendance.UpdateAttendance)
		attendance.DELETE("/:id", handlers.Attendance.DeleteAttendance)
	}

	return router
}

// importGuard rate-limits roster uploads when IMPORT_RATE_PER_MINUTE is set.
func importGuard(cfg *config.Config) gin.HandlerFunc {
	if cfg.ImportRatePerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := middleware.NewRateLimiter(cfg.ImportRatePerMinute, time.Minute)
	go limiter.Run(nil)
	return limiter.Middleware()
}

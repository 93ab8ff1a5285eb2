package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courseattend/internal/attendance"
	"courseattend/internal/auth"
	"courseattend/internal/config"
	"courseattend/internal/course"
	"courseattend/internal/handler"
	"courseattend/internal/httpmiddleware"
	"courseattend/internal/store"
	"courseattend/internal/user"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.EnsureSchema(context.Background(), db.Client); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	userSvc := user.NewService(user.NewRepository(db.Client))
	courseSvc := course.NewService(course.NewRepository(db.Client))
	attSvc := attendance.NewService(attendance.NewRepository(db.Client))

	h := handler.New(userSvc, courseSvc, attSvc, handler.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())

	if cfg.RateLimitBackend == "redis" {
		r.Use(httpmiddleware.NewRedisRateLimiter(redisClient.Client, cfg.RateLimitPerMin).GinMiddleware())
	} else {
		r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		redisHealthy := redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "welcome to the course attendance API"})
	})

	r.POST("/signup", h.Signup)
	r.POST("/signin", h.Signin)
	r.GET("/auth/status", auth.OptionalUserAuth(cfg.JWTSigningKey, cfg.JWTIssuer), h.AuthStatus)

	authed := r.Group("/", auth.UserAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authed.GET("/users/:id", h.GetUser)
	authed.PUT("/users/:id", h.UpdateUser)
	authed.DELETE("/users/:id", h.DeleteUser)
	authed.GET("/users/:id/enrollments", h.ListUserEnrollments)
	authed.GET("/users/:id/attendances", h.ListUserAttendances)

	authed.POST("/courses", h.CreateCourse)
	authed.GET("/courses", h.ListCourses)
	authed.GET("/courses/:id", h.GetCourse)
	authed.PUT("/courses/:id", h.UpdateCourse)
	authed.DELETE("/courses/:id", h.DeleteCourse)
	authed.GET("/courses/:id/enrollments", h.ListCourseAttendees)
	authed.POST("/courses/:id/sessions", h.CreateSession)
	authed.GET("/courses/:id/sessions", h.ListCourseSessions)
	authed.GET("/courses/:id/attendance_summary", h.CourseAttendanceSummary)

	authed.POST("/enrollments", h.Enroll)
	authed.DELETE("/enrollments", h.Unenroll)

	authed.GET("/sessions/:id", h.GetSession)
	authed.PUT("/sessions/:id", h.UpdateSession)
	authed.DELETE("/sessions/:id", h.DeleteSession)
	authed.POST("/sessions/:id/attendances", h.MarkAttendance)
	authed.GET("/sessions/:id/attendances", h.ListSessionAttendances)
	authed.POST("/sessions/:id/mark_absent_for_unattended", h.MarkAbsentForUnattended)

	authed.GET("/attendances/:id", h.GetAttendance)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

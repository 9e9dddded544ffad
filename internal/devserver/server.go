// Package devserver is a local stand-in for the estatly backend.
//
// It serves every endpoint the client consumes, answers with the
// {success, message, data} envelope, and keeps its data in SQLite (in memory by
// default). One-time codes are written to the log instead of being mailed.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/estatly/estatly/internal/config"
)

const (
	roleUser  = "user"
	roleAdmin = "admin"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    config.DevServerConfig
	logger    zerolog.Logger
	validator *validator.Validate
	tokens    *tokenIssuer
	metrics   *metrics
	otpLimit  *rateLimiter
}

// envelope is the body shape of every response
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// New creates a new server instance
func New(cfg config.DevServerConfig, zlog zerolog.Logger) (*Server, error) {
	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	tokens, err := newTokenIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: validator.New(),
		tokens:    tokens,
		metrics:   newMetrics(),
		otpLimit:  newRateLimiter(6*time.Second, 10),
	}

	if err := server.seedAdmin(); err != nil {
		return nil, err
	}

	server.setupRouter()

	return server, nil
}

// initDatabase opens SQLite with a single long-lived connection so that
// in-memory databases survive between requests
func initDatabase(cfg config.DevServerConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys=1").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// seedAdmin makes sure the configured admin account exists
func (s *Server) seedAdmin() error {
	if s.config.AdminEmail == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", s.config.AdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(s.config.AdminPassword)
	if err != nil {
		return err
	}

	admin := &User{
		Email:         s.config.AdminEmail,
		PasswordHash:  hash,
		FirstName:     "Site",
		LastName:      "Admin",
		Role:          roleAdmin,
		EmailVerified: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info().Str("email", admin.Email).Msg("Seeded admin user")
	return nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(s.metrics.middleware())

	// The web front end runs on the Vite dev server
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.metrics.handler()))

	// Public endpoints
	authRoutes := s.router.Group("/api/auth")
	{
		authRoutes.POST("/signup", s.signup)
		authRoutes.POST("/login", s.login)
		limited := RateLimitMiddleware(s.otpLimit, s.logger)
		authRoutes.POST("/verify-email-otp", limited, s.verifyEmailOTP)
		authRoutes.POST("/forgot-password", limited, s.forgotPassword)
		authRoutes.POST("/reset-password", limited, s.resetPassword)
	}

	s.router.GET("/api/properties", s.listProperties)
	s.router.GET("/api/properties/featured", s.featuredProperties)
	s.router.GET("/api/properties/:id", s.getProperty)

	// Authenticated routes
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.tokens, s.logger))
	{
		api.GET("/profile", s.getProfile)
		api.PUT("/profile", s.updateProfile)

		api.POST("/properties", s.createProperty)
		api.PUT("/properties/:id", s.updateProperty)
		api.DELETE("/properties/:id", s.deleteProperty)

		adminRoutes := api.Group("/admin")
		adminRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			adminRoutes.GET("/stats", s.adminStats)
			adminRoutes.GET("/properties", s.adminListProperties)
			adminRoutes.PUT("/properties/:id/status", s.adminUpdatePropertyStatus)
			adminRoutes.DELETE("/properties/:id", s.adminDeleteProperty)
			adminRoutes.GET("/users", s.adminListUsers)
			adminRoutes.GET("/users/:id", s.adminGetUser)
			adminRoutes.DELETE("/users/:id", s.adminDeleteUser)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "estatly-devserver",
	})
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// GetDB returns the database connection
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Close releases the database
func (s *Server) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if err := s.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

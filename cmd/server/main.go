package main

import (
	"github.com/EnpoDev/camlikspor-sub001/internal/auth"
	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/handler"
	"github.com/EnpoDev/camlikspor-sub001/internal/middleware"
	"github.com/EnpoDev/camlikspor-sub001/internal/store"
	"github.com/EnpoDev/camlikspor-sub001/pkg/config"
	"github.com/EnpoDev/camlikspor-sub001/pkg/database"
	"github.com/EnpoDev/camlikspor-sub001/pkg/logger"
	"github.com/EnpoDev/camlikspor-sub001/pkg/sessiontoken"
	"github.com/EnpoDev/camlikspor-sub001/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	loginPath = "/auth/login"
	homePath  = "/app/profile"
)

func main() {
	// Load configuration from .env file and environment variables.
	// A missing signing key is fatal here, not a per-request condition.
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting back-office service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize session token codec
	sessiontoken.Initialize(&cfg.Session)
	log.Info("Session token codec initialized", zap.Duration("ttl", cfg.Session.TTL))

	// Wire stores and the session issuer
	db := database.GetDB()
	users := store.NewUserStore(db)
	dealers := store.NewDealerStore(db)
	grants := store.NewGrantStore(db)
	issuer := auth.NewIssuer(users, dealers, grants, cfg.Auth, log)

	authHandler := handler.NewAuthHandler(issuer, cfg.Session)
	userHandler := handler.NewUserHandler(users, dealers)
	dealerHandler := handler.NewDealerHandler(dealers)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// The request gate fronts every page route. API, static and health
	// paths bypass it and authenticate on their own.
	e.Use(middleware.Gate(middleware.GateConfig{
		AuthPaths:    []string{loginPath, "/auth/recover"},
		SkipPrefixes: []string{"/api/", "/static/", "/assets/", "/metrics", "/health"},
		CookieName:   cfg.Session.CookieName,
		LoginPath:    loginPath,
		HomePath:     homePath,
	}))

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	// Page routes - session attached by the gate
	app := e.Group("/app")
	app.GET("/profile", userHandler.Profile)
	app.POST("/password", authHandler.ChangePassword)
	app.GET("/users", userHandler.List,
		middleware.RequireCapability(authz.CapUsersView, homePath))
	app.GET("/dealers/:slug", dealerHandler.GetBySlug,
		middleware.RequireCapability(authz.CapDealersView, homePath))

	// API routes - bearer-token authentication, outside the gate
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.GET("/profile", userHandler.Profile)
	api.POST("/password", authHandler.ChangePassword)
	api.GET("/users", userHandler.List,
		middleware.RequireCapability(authz.CapUsersView, homePath))
	api.GET("/dealers/:slug", dealerHandler.GetBySlug,
		middleware.RequireCapability(authz.CapDealersView, homePath))

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

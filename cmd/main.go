package main

import (
	"fmt"
	"os"

	"github.com/kaula1/bizmate/internal/handler"
	"github.com/kaula1/bizmate/internal/middleware"
	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/pkg/config"
	"github.com/kaula1/bizmate/pkg/database"
	"github.com/kaula1/bizmate/pkg/jwtutil"
	"github.com/kaula1/bizmate/pkg/logger"
	"github.com/kaula1/bizmate/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	conf, err := config.Load("bizmate")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.Info("Starting bizmate...", zap.String("environment", conf.Server.Env))

	// Initialize database connection
	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Run migrations
	if err := database.MigrateModels(
		&model.User{},
		&model.Organization{},
		&model.Membership{},
		&model.OrgSelection{},
		&model.Product{},
		&model.InventoryLevel{},
		&model.Customer{},
	); err != nil {
		log.Fatal("Failed to migrate database models", zap.Error(err))
	}

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})
	handler.Init(jwt, conf)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)

	// API routes - all require authentication and an organization context
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwt))
	api.Use(middleware.OrgContextMiddleware(db))

	api.POST("/auth/logout", handler.Logout)

	// Organization management - does not require a current organization
	orgs := api.Group("/orgs")
	orgs.POST("", handler.CreateOrganization)
	orgs.GET("", handler.ListMemberships)
	orgs.POST("/switch", handler.SwitchOrganization)
	orgs.GET("/current", handler.CurrentOrganization)

	// Tenant-scoped operations - require a current organization
	products := api.Group("/products")
	products.Use(middleware.RequireOrganization())
	products.GET("", handler.ListProducts)
	products.POST("", handler.CreateProduct)
	products.GET("/:id", handler.GetProduct)
	products.PUT("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)
	products.POST("/:id/stock", handler.AdjustStock)
	products.PUT("/:id/inventory", handler.SetInventoryLevel)

	inventoryGroup := api.Group("/inventory")
	inventoryGroup.Use(middleware.RequireOrganization())
	inventoryGroup.GET("/low-stock", handler.ListLowStock)

	customers := api.Group("/customers")
	customers.Use(middleware.RequireOrganization())
	customers.GET("", handler.ListCustomers)
	customers.POST("", handler.CreateCustomer)
	customers.GET("/:id", handler.GetCustomer)
	customers.PUT("/:id", handler.UpdateCustomer)
	customers.DELETE("/:id", handler.DeleteCustomer)

	// Start server
	log.Info("Starting server", zap.String("port", conf.Server.Port))
	if err := e.Start(":" + conf.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

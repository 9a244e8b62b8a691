package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/api/handlers"
	"github.com/Starlight373/Car-wash/internal/api/middleware"
	"github.com/Starlight373/Car-wash/internal/config"
	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, enqueuer services.AggregateEnqueuer) *gin.Engine {
	// Initialize services needed by API handlers HERE
	userService := services.NewUserService(db)
	shiftService := services.NewShiftService(db, cfg, userService)
	customerService := services.NewCustomerService(db)
	membershipService := services.NewMembershipService(db, cfg, customerService)
	catalogService := services.NewCatalogService(db)
	inventoryService := services.NewInventoryService(db)
	sequencer := services.NewInvoiceSequencer(db)
	transactionService := services.NewTransactionService(db, cfg, shiftService, sequencer, enqueuer)
	dashboardService := services.NewDashboardService(cfg, rdb, transactionService, membershipService, inventoryService)

	r := gin.Default()

	// Initialize Middleware
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, userService)
	customerHandler := handlers.NewCustomerHandler(customerService, transactionService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	publicHandler := handlers.NewPublicHandler(customerService, membershipService, catalogService)

	apiGroup := r.Group("/api")
	{
		// Public routes (rate limiting already applied globally)
		apiGroup.POST("/auth/register", authHandler.Register)
		apiGroup.POST("/auth/login", authHandler.Login)

		apiGroup.POST("/public/check-membership", publicHandler.CheckMembership)
		apiGroup.GET("/public/services", publicHandler.ListServices)

		apiGroup.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes
		authRequired := apiGroup.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/auth/me", authHandler.Me)

			authRequired.POST("/shifts/open", shiftHandler.Open)
			authRequired.POST("/shifts/close", shiftHandler.Close)
			authRequired.GET("/shifts/current/:kasir_id", shiftHandler.Current)
			authRequired.GET("/shifts", shiftHandler.List)

			authRequired.POST("/transactions", transactionHandler.Create)
			authRequired.GET("/transactions", transactionHandler.List)
			authRequired.GET("/transactions/today", transactionHandler.ListToday)

			authRequired.POST("/customers", customerHandler.Create)
			authRequired.GET("/customers", customerHandler.List)
			authRequired.GET("/customers/:id", customerHandler.Get)
			authRequired.PUT("/customers/:id", customerHandler.Update)
			authRequired.GET("/customers/:id/transactions", customerHandler.ListTransactions)

			authRequired.POST("/memberships", membershipHandler.Create)
			authRequired.GET("/memberships", membershipHandler.List)
			authRequired.GET("/memberships/expiring-soon", membershipHandler.ListExpiringSoon)

			authRequired.POST("/services", catalogHandler.CreateWashService)
			authRequired.GET("/services", catalogHandler.ListWashServices)
			authRequired.GET("/services/:id", catalogHandler.GetWashService)
			authRequired.PUT("/services/:id", catalogHandler.UpdateWashService)

			authRequired.POST("/products", catalogHandler.CreateProduct)
			authRequired.GET("/products", catalogHandler.ListProducts)
			authRequired.PUT("/products/:id", catalogHandler.UpdateProduct)

			authRequired.POST("/inventory", inventoryHandler.Create)
			authRequired.GET("/inventory", inventoryHandler.List)
			authRequired.GET("/inventory/low-stock", inventoryHandler.ListLowStock)
			authRequired.GET("/inventory/:id", inventoryHandler.Get)
			authRequired.PUT("/inventory/:id", inventoryHandler.Update)
			authRequired.DELETE("/inventory/:id", inventoryHandler.Delete)

			authRequired.GET("/dashboard/stats", dashboardHandler.Stats)
		}

		// Management routes (owner and manager only)
		managementRequired := apiGroup.Group("/")
		managementRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.RequireRoles(models.RoleOwner, models.RoleManager))
		{
			managementRequired.GET("/users", authHandler.ListUsers)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine used
// for operational commands on the internal port.
func SetupServiceRouter(cfg *config.Config, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				fmt.Println("Shutdown signal sent successfully.")
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})

	return r
}

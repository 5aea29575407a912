package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/middlewares"
	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

const defaultPort = "8080"

var tracer = otel.Tracer("resto-backend")

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(corsConfig()))
	router.Use(correlationMiddleware())
	router.Use(middlewares.AuthMiddleware())

	registerRoutes(router)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Listen first, then connect dependencies: the container must bind the
	// port quickly even when the database is still coming up.
	go func() {
		log.Printf("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func corsConfig() cors.Config {
	corsCfg := cors.DefaultConfig()
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{origins}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	return corsCfg
}

// correlationMiddleware tags every request with a correlation id for the
// audit trail and log lines.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-Id", correlationId)
		c.Next()
	}
}

func registerRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", registerHandler)
		auth.POST("/login", loginHandler)
	}

	api := router.Group("/api", middlewares.RequireAuth())
	{
		// ordering core
		api.GET("/shopping-list", shoppingListHandler)
		api.POST("/orders/generate", generateOrdersHandler)
		api.GET("/orders", listOrdersHandler)
		api.GET("/orders/:id", getOrderHandler)
		api.PUT("/orders/:id/status", updateOrderStatusHandler)
		api.PUT("/orders/:id/items", updateOrderItemsHandler)
		api.DELETE("/orders/:id", deleteOrderHandler)
		api.GET("/consolidation-savings", consolidationSavingsHandler)

		// catalog
		api.POST("/ingredients", createIngredientHandler)
		api.PUT("/ingredients/:id", updateIngredientHandler)
		api.GET("/ingredients", listIngredientsHandler)
		api.GET("/ingredients/low-stock", lowStockHandler)
		api.POST("/suppliers", createSupplierHandler)
		api.GET("/suppliers", listSuppliersHandler)
		api.PUT("/supplier-ingredients", upsertSupplierIngredientHandler)
		api.POST("/recipes", createRecipeHandler)
		api.GET("/recipes", listRecipesHandler)
		api.POST("/events", createEventHandler)
		api.GET("/events", listEventsHandler)

		// audit trail
		api.GET("/orders/:id/history", orderHistoryHandler)
	}
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	var notFoundErr *utils.NotFoundError
	var conflictErr *utils.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message, "current_state": conflictErr.CurrentState})
	default:
		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "server.go", "respondError", c.FullPath(),
			map[string]any{"correlation_id": correlationId}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "correlation_id": correlationId})
	}
}

// respondBindError turns a request-body binding failure into a 400. Field
// level validator failures come back as a field -> rule map so clients can
// highlight the offending inputs.
func respondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(fieldErrs)})
		return
	}
	respondError(c, utils.NewValidationError("invalid request body: %v", err))
}

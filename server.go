package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opsdine/resto_backend/appctx"
	"github.com/opsdine/resto_backend/config"
	"github.com/opsdine/resto_backend/storage"
	"github.com/opsdine/resto_backend/storage/gormstore"
	"github.com/opsdine/resto_backend/storage/memstore"
	"github.com/opsdine/resto_backend/storage/supastore"
	"github.com/opsdine/resto_backend/utils"
	"github.com/opsdine/resto_backend/workflow"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// services is the wired application: one storage backend chosen at
// process start, everything else built on top of it.
type services struct {
	store      storage.Store
	ledger     *workflow.InventoryLedger
	catalog    *workflow.RecipeCatalog
	engine     *workflow.FulfillmentEngine
	dispatcher *workflow.Dispatcher
}

var svc atomic.Pointer[services]

func getServices() *services {
	return svc.Load()
}

// RateLimiter is a fixed-window redis limiter keyed by client IP.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if exists == 0 {
		if err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}
	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// bootstrapServices connects the selected backend and publishes the wired
// services. Runs after the listener is up; until it finishes the
// readiness gate answers 503.
func bootstrapServices(logger *logrus.Logger) {
	var store storage.Store

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	switch backend {
	case "", "memory":
		store = memstore.New()
		log.Printf("storage backend: memory (volatile)")
	case "supabase":
		store = supastore.New(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_SERVICE_KEY"))
		log.Printf("storage backend: supabase (%s)", os.Getenv("SUPABASE_URL"))
	case "gorm", "database":
		config.ConnectDatabaseWithRetry()
		gs := gormstore.New(config.GetDB())
		if strings.EqualFold(strings.TrimSpace(os.Getenv("DB_AUTO_MIGRATE")), "true") {
			if err := gs.Migrate(); err != nil {
				config.LogError(logger, "server.go", "bootstrapServices", "Migrate", nil, err)
			}
		}
		store = gs
		log.Printf("storage backend: gorm (%s)", os.Getenv("DB_DRIVER"))
	default:
		log.Fatalf("unknown STORAGE_BACKEND %q (want memory|gorm|supabase)", backend)
	}

	// Optional: broadcast + alert dedupe + rate limiting.
	config.ConnectRedisWithRetry()

	dispatcher := workflow.NewDispatcher(store, config.GetRedisDB(), config.GetRedisLock(), logger)
	ledger := workflow.NewInventoryLedger(store)
	svc.Store(&services{
		store:      store,
		ledger:     ledger,
		catalog:    workflow.NewRecipeCatalog(store),
		engine:     workflow.NewFulfillmentEngine(store, dispatcher, logger),
		dispatcher: dispatcher,
	})
	log.Printf("services ready")
}

// respondError maps the shared error taxonomy onto HTTP. Storage causes
// are logged with detail but never leaked verbatim to the client.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
		return
	}
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, utils.ErrorRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorNoIngredients), errors.Is(err, utils.ErrorInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(logger, "server.go", "respondError", c.FullPath(), gin.H{"correlation_id": cid}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// SIGTERM handling for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), cid)
		// Optional caller identity; notifications raised by this request
		// are addressed to it instead of broadcast.
		if uid, err := strconv.Atoi(c.GetHeader("x-user-id")); err == nil && uid > 0 {
			ctx = appctx.Set(ctx, appctx.ContextKeyUserId, uid)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header("x-correlation-id", cid)
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on backend readiness.
		if getServices() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production: explicit allowlist via CORS_ALLOWED_ORIGINS; otherwise
	// allow all for developer convenience.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting. Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDRESS")})
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(gin.Recovery())

	r.GET("/inventory", listInventoryHandler(logger))
	r.GET("/inventory/low-stock", lowStockHandler(logger))
	r.GET("/inventory/export", exportInventoryHandler(logger))
	r.GET("/inventory/:id", getInventoryHandler(logger))
	r.POST("/inventory", createInventoryHandler(logger))
	r.PATCH("/inventory/:id", updateInventoryHandler(logger))
	r.PATCH("/inventory/:id/stock", adjustStockHandler(logger))
	r.POST("/inventory/bulk-upload", bulkUploadHandler(logger))

	r.GET("/recipes", listRecipesHandler(logger))
	r.GET("/recipes/:id", getRecipeHandler(logger))
	r.POST("/recipes", createRecipeHandler(logger))
	r.PATCH("/recipes/:id", updateRecipeHandler(logger))
	r.GET("/recipes/:id/items", listRecipeItemsHandler(logger))
	r.POST("/recipes/:id/items", addRecipeItemHandler(logger))
	r.PATCH("/recipe-items/:id", updateRecipeItemHandler(logger))
	r.DELETE("/recipe-items/:id", deleteRecipeItemHandler(logger))

	r.GET("/notifications", listNotificationsHandler(logger))
	r.PATCH("/notifications/:id/read", markNotificationReadHandler(logger))

	// Order intake triggers fulfillment internally; results also land on
	// the notification feed.
	r.POST("/orders", createOrderHandler(logger))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()
	log.Printf("listening on :%s", port)

	go bootstrapServices(logger)

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-sigCtx.Done():
		log.Printf("shutdown signal received; draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/accountgate/accountgate/handlers"
	"github.com/accountgate/accountgate/internal/config"
	"github.com/accountgate/accountgate/internal/session"
	"github.com/accountgate/accountgate/internal/tokenstore"
	"github.com/accountgate/accountgate/internal/upstream"
	"github.com/accountgate/accountgate/pkg/logger"
	"github.com/accountgate/accountgate/pkg/metrics"
	"github.com/accountgate/accountgate/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: upstream=%s redis=%v", cfg.Upstream.BaseURL, cfg.Redis.Host != "")

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Redis is optional: without it the profile cache degrades to
	// always-fetch and the rate limiter stays in-memory.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{"upstream": cfg.Upstream.BaseURL != ""}
		ready := deps["upstream"]
		if cfg.Redis.Host != "" {
			deps["redis"] = rdb != nil
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	pub := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, "public")
	priv := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, "private")
	state := session.NewState()
	cache := session.NewProfileCache(rdb, "profile:", cfg.Redis.ProfileTTL)

	cookieOpts := tokenstore.Options{
		AccessTTL:   cfg.Cookies.AccessTTL,
		RefreshTTL:  cfg.Cookies.RefreshTTL,
		ForceSecure: cfg.Cookies.ForceSecure,
	}
	bound := r.Group("/", middleware.SessionBinder(pub, priv, cookieOpts))

	handlers.NewAuthHandler(pub, state, cache).Register(bound)

	guarded := bound.Group("/", middleware.AuthGate(cache, state))
	handlers.NewProfileHandler(state, cache).Register(guarded)

	dashboard := bound.Group("/dashboard", middleware.AuthGate(cache, state))
	handlers.NewDashboardHandler().Register(dashboard)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting account gateway on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

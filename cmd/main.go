package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamepanel/user-service/internal/capability"
	"github.com/gamepanel/user-service/internal/config"
	"github.com/gamepanel/user-service/internal/handler"
	userqry "github.com/gamepanel/user-service/internal/query"
	"github.com/gamepanel/user-service/internal/repository"
	"github.com/gamepanel/user-service/internal/store"
	"github.com/gamepanel/user-service/shared/events"
	"github.com/gamepanel/user-service/shared/logger"
	"github.com/gamepanel/user-service/shared/metrics"
	"github.com/gamepanel/user-service/shared/middleware"
	redisClient "github.com/gamepanel/user-service/shared/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("user service stopped", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	middleware.MustInitJWTSecret(cfg.JWTSecret)

	// The capability set is fixed for the life of the process.
	graph := capability.DefaultGraph()
	if err := capability.ValidateGraph(graph); err != nil {
		return err
	}
	plan, err := capability.Validate(cfg.CapabilitySet(), graph)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	identityPool, err := store.Open(ctx, store.Identity, cfg.Stores.Identity.Pool())
	if err != nil {
		return err
	}
	defer identityPool.Close()

	gameplayPool, err := store.Open(ctx, store.Gameplay, cfg.Stores.Gameplay.Pool())
	if err != nil {
		return err
	}
	defer gameplayPool.Close()

	// Audit events are optional; without Redis lookups are only logged.
	var publisher userqry.Publisher
	if cfg.AuditEnabled() {
		redis, err := redisClient.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redis.Close()
		publisher = events.NewPublisher(redis.Client, cfg.AuditStream, cfg.AuditMaxLen)
	}

	querySvc := userqry.NewUserQueryService(
		repository.NewIdentityReadRepository(identityPool),
		repository.NewGameplayReadRepository(gameplayPool),
		graph,
		plan,
		publisher,
		log,
	)
	userHandler := handler.NewUserHandler(querySvc, log)

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(log))

	v1 := router.Group("/v1/users")
	{
		v1.GET("/:userId", middleware.AuthMiddleware(), userHandler.GetUser)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("user service starting", "port", cfg.Port, "capabilities", plan.List(), "audit", cfg.AuditEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

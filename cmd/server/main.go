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

	"github.com/gin-gonic/gin"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/fanout"
	"github.com/codegram/codegram-live/internal/gateway"
	"github.com/codegram/codegram-live/internal/handler"
	"github.com/codegram/codegram-live/internal/hub"
	"github.com/codegram/codegram-live/internal/realtime"
	"github.com/codegram/codegram-live/internal/reconciler"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/internal/service"
	"github.com/codegram/codegram-live/internal/store"
	"github.com/codegram/codegram-live/pkg/database"
	pkglog "github.com/codegram/codegram-live/pkg/log"
	"github.com/codegram/codegram-live/pkg/jwt"
	"github.com/codegram/codegram-live/pkg/middleware"
	"github.com/codegram/codegram-live/pkg/pubsub"
)

const serviceName = "codegram-live"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	if cfg.Log.ServiceName == "" {
		cfg.Log.ServiceName = serviceName
	}
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	// 3. Database and migrations
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get underlying sql.DB")
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// 4. Counter cache
	var counterStore store.CounterStore = store.NopCounterStore{}
	if cfg.Redis.Address != "" {
		rs, err := store.NewRedisCounterStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CounterTTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		counterStore = rs
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis counter store connected")
	} else {
		logger.Warn().Msg("REDIS_ADDRESS not configured; counters read from database")
	}
	defer counterStore.Close()

	// 5. Message bus
	bus, err := pubsub.NewPubSub(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create pubsub")
	}
	logger.Info().Str("driver", cfg.PubSub.Driver).Msg("pubsub ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Hub and bus relay
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run(ctx)

	relay := realtime.NewRelay(bus, wsHub)
	go relay.Run(ctx)

	// 7. Repositories and services
	users := repository.NewGormUserRepository(db)
	contents := repository.NewGormContentRepository(db)
	likes := repository.NewGormLikeRepository(db)
	bookmarks := repository.NewGormBookmarkRepository(db)
	follows := repository.NewGormFollowRepository(db)
	blocks := repository.NewGormBlockRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	comments := repository.NewGormCommentRepository(db)

	rt := realtime.NewBusBroadcaster(bus)
	counters := service.NewCounters(counterStore, follows, likes, bookmarks, notificationRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, users, contents, comments, counters, rt)
	services := handler.Services{
		Interactions:  service.NewInteractionService(contents, likes, bookmarks, notificationSvc, counters),
		Follows:       service.NewFollowService(follows, blocks, users, notificationSvc, counters, rt),
		Comments:      service.NewCommentService(comments, contents, notificationSvc, rt),
		Notifications: notificationSvc,
		Contents: service.NewContentService(contents, users, notificationSvc,
			fanout.New(follows, rt, cfg.Feed.FanoutConcurrency, cfg.Feed.FanoutTimeout)),
	}

	// 8. Reconciler
	var rec *reconciler.Reconciler
	if cfg.Reconciler.Enabled && cfg.Redis.Address != "" {
		rec = reconciler.New(counterStore, counters, cfg.Reconciler)
		rec.Start(ctx)
		logger.Info().Dur("interval", cfg.Reconciler.Interval).Int("top_n", cfg.Reconciler.TopN).Msg("reconciler started")
	}

	// 9. Router
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessDuration, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	ws := gateway.NewHandler(wsHub, authMiddleware, cfg.WebSocket, cfg.RateLimit, cfg.Server.AllowedOrigins)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws", gin.WrapH(pkglog.HTTPMiddleware(logger)(ws)))

	api := r.Group("", pkglog.GinMiddleware(logger))
	handler.NewHandler(services, authMiddleware).RegisterRoutes(api)

	// 10. Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg("codegram-live starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 11. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}

		cancel()
		if rec != nil {
			rec.Stop()
			<-rec.Done()
		}
		<-relay.Done()
		<-wsHub.Done()

		if err := bus.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing pubsub")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("codegram-live stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}

// cmd/leaguemanager/main.go
// Entry point for the League Manager agent: owns registration, scheduling,
// dispatch, and standings for one tournament.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evenodd-league/tournament/internal/config"
	"github.com/evenodd-league/tournament/internal/database"
	"github.com/evenodd-league/tournament/internal/events/wsbus"
	"github.com/evenodd-league/tournament/internal/leaguemanager"
	"github.com/evenodd-league/tournament/internal/leaguemanager/eventlog"
	"github.com/evenodd-league/tournament/internal/middleware"
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	lmCfg := config.LoadLeagueManager()

	logger := newLogger(cfg.Environment)
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Initialize(ctx, database.Config{
		MySQL:   database.MySQLConfig(cfg.Database.MySQL),
		MongoDB: database.MongoConfig(cfg.Database.MongoDB),
		Redis:   database.RedisConfig(cfg.Database.Redis),
	}, sugar)
	cancel()
	if err != nil {
		sugar.Fatalw("failed to initialize data stores", "err", err)
	}
	defer db.Close()

	gameCfg := models.GameConfig{
		MaxRounds:        lmCfg.MaxRounds,
		ValidMoveRange:   models.MoveRange{Min: lmCfg.MoveMin, Max: lmCfg.MoveMax},
		DefaultMove:      lmCfg.DefaultMove,
		ForfeitThreshold: lmCfg.ForfeitAfter,
		MoveDeadline:     30 * time.Second,
		InviteDeadline:   5 * time.Second,
		ReportDeadline:   5 * time.Second,
	}

	container, err := leaguemanager.NewContainer(lmCfg.TournamentID, lmCfg.GameType, gameCfg, lmCfg.PoolSize, lmCfg.MaxPlayers, cfg, db, sugar)
	if err != nil {
		sugar.Fatalw("failed to assemble league manager", "err", err)
	}
	defer container.Dispatcher.Release()

	if cfg.Features.EnableEventAudit && db.MongoDB != nil {
		writer := eventlog.New(db.MongoDB, sugar)
		auditCtx, auditCancel := context.WithCancel(context.Background())
		defer auditCancel()
		go writer.Run(auditCtx, container.Bus)
	}

	router := setupRouter(cfg, container, sugar)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sugar.Infow("league manager listening", "port", cfg.Server.Port, "tournament_id", lmCfg.TournamentID, "game_type", lmCfg.GameType)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "err", err)
		}
	}()

	gracefulShutdown(srv, sugar)
}

func setupRouter(cfg *config.Config, container *leaguemanager.Container, logger *zap.SugaredLogger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimiter(container.Cache, 600, time.Minute))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	if cfg.Features.MaintenanceMode {
		router.Use(middleware.MaintenanceMode())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "phase": container.Controller.Phase()})
	})

	rpcServer := protocol.NewServer(logger, container.Registry.ValidateToken, "register_player", "register_referee")
	leaguemanager.RegisterHandlers(rpcServer, container.Controller, container.Registry)
	rpcServer.Mount(router, "/mcp")

	if cfg.Features.EnableEventStream {
		hub := wsbus.NewHub(container.Bus, logger)
		go hub.Run()
		router.GET("/events", hub.HandleUpgrade)
	}

	return router
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		l, _ := zap.NewProduction()
		return l
	}
	l, _ := zap.NewDevelopment()
	return l
}

func gracefulShutdown(srv *http.Server, logger *zap.SugaredLogger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down league manager")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("server forced to shutdown", "err", err)
	}
	logger.Info("league manager exited")
}

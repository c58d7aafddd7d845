// cmd/referee/main.go
// Entry point for a Referee agent: registers with the League Manager, then
// runs matches assigned to it.

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
	"github.com/evenodd-league/tournament/internal/events"
	"github.com/evenodd-league/tournament/internal/middleware"
	"github.com/evenodd-league/tournament/internal/protocol"
	"github.com/evenodd-league/tournament/internal/referee"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	refCfg := config.LoadReferee()
	if refCfg.RefereeID == "" {
		panic("REFEREE_ID is required")
	}

	logger := newLogger(cfg.Environment)
	defer logger.Sync()
	sugar := logger.Sugar()

	bus := events.NewBus()
	sender := "referee:" + refCfg.RefereeID
	client := protocol.NewClient(sender, refCfg.BootstrapSecret, sugar, bus)

	if _, err := registerWithLeague(client, refCfg, sugar); err != nil {
		sugar.Fatalw("failed to register with league manager", "err", err)
	}

	container, err := referee.NewContainer(refCfg.RefereeID, refCfg.Capacity, client, bus, sugar)
	if err != nil {
		sugar.Fatalw("failed to assemble referee", "err", err)
	}
	defer container.Release()

	router := setupRouter(cfg, container, client, refCfg, sugar)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sugar.Infow("referee listening", "port", cfg.Server.Port, "referee_id", refCfg.RefereeID, "capacity", refCfg.Capacity)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "err", err)
		}
	}()

	gracefulShutdown(srv, sugar)
}

type registerRefereeResult struct {
	AuthToken        string `json:"auth_token"`
	AcceptedCapacity int    `json:"accepted_capacity"`
}

// registerWithLeague calls register_referee on the League Manager and
// returns the bearer token issued for subsequent calls.
func registerWithLeague(client *protocol.Client, refCfg config.RefereeConfig, logger *zap.SugaredLogger) (string, error) {
	payload := map[string]interface{}{
		"referee_id": refCfg.RefereeID,
		"endpoint":   refCfg.SelfEndpoint,
		"capacity":   refCfg.Capacity,
	}

	var result registerRefereeResult
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Call(ctx, refCfg.LeagueEndpoint, "register_referee", payload, &result, 10*time.Second); err != nil {
		return "", err
	}
	logger.Infow("registered with league manager", "accepted_capacity", result.AcceptedCapacity)
	return result.AuthToken, nil
}

func setupRouter(cfg *config.Config, container *referee.Container, client *protocol.Client, refCfg config.RefereeConfig, logger *zap.SugaredLogger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "active_matches": container.ActiveCount()})
	})

	validator := func(sender, token string) bool {
		return sender == "league:LM" && token == refCfg.BootstrapSecret
	}
	rpcServer := protocol.NewServer(logger, validator)
	referee.RegisterHandlers(rpcServer, container, client, refCfg.LeagueEndpoint)
	rpcServer.Mount(router, "/mcp")

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

	logger.Info("shutting down referee")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("server forced to shutdown", "err", err)
	}
	logger.Info("referee exited")
}

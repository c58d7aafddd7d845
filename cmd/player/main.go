// cmd/player/main.go
// Entry point for a Player agent: registers with the League Manager, then
// answers game_invite/request_move/round_result/game_over calls from
// whichever referee it is assigned to.

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
	"github.com/evenodd-league/tournament/internal/player"
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
	plCfg := config.LoadPlayer()

	logger := newLogger(cfg.Environment)
	defer logger.Sync()
	sugar := logger.Sugar()

	bus := events.NewBus()
	client := protocol.NewClient("player:bootstrap", plCfg.BootstrapSecret, sugar, bus)

	playerID, _, err := registerWithLeague(client, plCfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to register with league manager", "err", err)
	}

	container := player.NewContainer(playerID, plCfg.DisplayName, plCfg.StrategyName, sugar)

	router := setupRouter(cfg, container, plCfg, sugar)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sugar.Infow("player listening", "port", cfg.Server.Port, "player_id", playerID, "strategy", plCfg.StrategyName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "err", err)
		}
	}()

	gracefulShutdown(srv, sugar)
}

type registerPlayerResult struct {
	PlayerID           string `json:"player_id"`
	AuthToken          string `json:"auth_token"`
	AssignedRolePolicy string `json:"assigned_role_policy"`
}

// registerWithLeague calls register_player on the League Manager and
// returns the assigned player_id and bearer token.
func registerWithLeague(client *protocol.Client, plCfg config.PlayerConfig, logger *zap.SugaredLogger) (string, string, error) {
	payload := map[string]interface{}{
		"display_name":    plCfg.DisplayName,
		"endpoint":        plCfg.SelfEndpoint,
		"supported_games": plCfg.SupportedGames,
		"version":         "1.0",
	}

	var result registerPlayerResult
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Call(ctx, plCfg.LeagueEndpoint, "register_player", payload, &result, 10*time.Second); err != nil {
		return "", "", err
	}
	logger.Infow("registered with league manager", "player_id", result.PlayerID, "role_policy", result.AssignedRolePolicy)
	return result.PlayerID, result.AuthToken, nil
}

func setupRouter(cfg *config.Config, container *player.Container, plCfg config.PlayerConfig, logger *zap.SugaredLogger) *gin.Engine {
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
		c.JSON(http.StatusOK, gin.H{"status": "ok", "player_id": container.PlayerID})
	})

	// Only the referee currently running this player's match calls in; it
	// authenticates with the League Manager's shared bootstrap bearer,
	// which every agent in the tournament is configured with out of band.
	validator := func(sender, token string) bool {
		return token == plCfg.BootstrapSecret
	}
	rpcServer := protocol.NewServer(logger, validator)
	player.RegisterHandlers(rpcServer, container)
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

	logger.Info("shutting down player")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("server forced to shutdown", "err", err)
	}
	logger.Info("player exited")
}

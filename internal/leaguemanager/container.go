// internal/leaguemanager/container.go
// Dependency injection container wiring the League Manager's components,
// adapted from the teacher's internal/services/container.go.
package leaguemanager

import (
	"context"
	"time"

	"github.com/evenodd-league/tournament/internal/config"
	"github.com/evenodd-league/tournament/internal/database"
	"github.com/evenodd-league/tournament/internal/events"
	"github.com/evenodd-league/tournament/internal/leaguemanager/snapshotstore"
	"github.com/evenodd-league/tournament/internal/models"
	"github.com/evenodd-league/tournament/internal/protocol"
	"go.uber.org/zap"
)

// Container holds every League Manager component instance.
type Container struct {
	Registry   *Registry
	Standings  *StandingsBoard
	Dispatcher *Dispatcher
	Cache      *Cache
	Controller *Controller
	Bus        *events.Bus
	Client     *protocol.Client
}

// NewContainer assembles a League Manager for one tournament.
func NewContainer(tournamentID, gameType string, gameCfg models.GameConfig, poolSize, maxPlayers int, cfg *config.Config, db *database.Connections, logger *zap.SugaredLogger) (*Container, error) {
	bus := events.NewBus()

	registry := NewRegistry(gameType, maxPlayers, cfg.Auth.TokenSecret, cfg.Auth.BootstrapSecret)
	standings := NewStandingsBoard(nil)
	cache := NewCache(db.Redis, logger.Desugar())

	client := protocol.NewClient("league:LM", cfg.Auth.BootstrapSecret, logger, bus)

	dispatcher, err := NewDispatcher(registry, client, bus, logger, poolSize, gameType, gameCfg)
	if err != nil {
		return nil, err
	}

	var snapshots *snapshotstore.Store
	if cfg.Features.EnableSnapshots && db.MySQL != nil {
		snapshots = snapshotstore.New(db.MySQL, logger)
		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := snapshots.EnsureSchema(schemaCtx); err != nil {
			logger.Warnw("failed to ensure snapshot schema", "err", err)
		}
		cancel()
	}

	controller := NewController(tournamentID, gameType, registry, standings, dispatcher, cache, snapshots, bus, logger)

	return &Container{
		Registry:   registry,
		Standings:  standings,
		Dispatcher: dispatcher,
		Cache:      cache,
		Controller: controller,
		Bus:        bus,
		Client:     client,
	}, nil
}

// Package snapshotstore persists a best-effort standings snapshot to MySQL
// after each round, for operator recovery/inspection across restarts. It is
// not on the critical path: standings correctness is guaranteed in-memory
// by the round barrier, per §6 "Persisted state" ("an implementation MAY
// persist, but persistence format is out of scope").
package snapshotstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/evenodd-league/tournament/internal/models"
	"go.uber.org/zap"
)

// Store writes round-indexed standings snapshots to MySQL.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// New wraps an already-open MySQL handle. Call EnsureSchema once at
// startup before the first Save.
func New(db *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates the snapshot table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS standings_snapshots (
	tournament_id VARCHAR(64) NOT NULL,
	round_index   INT NOT NULL,
	captured_at   DATETIME NOT NULL,
	standings     JSON NOT NULL,
	PRIMARY KEY (tournament_id, round_index)
)`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Save records tournamentID's standings as of round_index. Failures are
// logged, not propagated: a snapshot write must never block or fail the
// round barrier it observes.
func (s *Store) Save(ctx context.Context, tournamentID string, standings models.Standings) {
	data, err := json.Marshal(standings.Entries)
	if err != nil {
		s.logger.Warnw("failed to marshal standings snapshot", "err", err)
		return
	}

	const q = `
INSERT INTO standings_snapshots (tournament_id, round_index, captured_at, standings)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE captured_at = VALUES(captured_at), standings = VALUES(standings)`

	if _, err := s.db.ExecContext(ctx, q, tournamentID, standings.RoundIndex, time.Now().UTC(), data); err != nil {
		s.logger.Warnw("failed to persist standings snapshot", "tournament_id", tournamentID, "round_index", standings.RoundIndex, "err", err)
	}
}

// Latest loads the most recently captured snapshot for tournamentID, for
// operator recovery after a restart.
func (s *Store) Latest(ctx context.Context, tournamentID string) (models.Standings, error) {
	const q = `
SELECT round_index, standings FROM standings_snapshots
WHERE tournament_id = ? ORDER BY round_index DESC LIMIT 1`

	var roundIndex int
	var raw []byte
	if err := s.db.QueryRowContext(ctx, q, tournamentID).Scan(&roundIndex, &raw); err != nil {
		return models.Standings{}, err
	}

	var entries []models.StandingsEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return models.Standings{}, err
	}
	return models.Standings{RoundIndex: roundIndex, Entries: entries}, nil
}

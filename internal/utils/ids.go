// internal/utils/ids.go
// ID generation helpers, adapted from the teacher's internal/utils/helpers.go.

package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateUUID generates a new random UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}

// PlayerID formats the sequential, deterministic player id assigned at
// registration time, per §4.2 ("P01, P02, …").
func PlayerID(sequence int) string {
	return fmt.Sprintf("P%02d", sequence)
}

// MatchID formats a match id from its round and sequence within the round,
// per §3 ("R{r}M{m}").
func MatchID(round, sequence int) string {
	return fmt.Sprintf("R%dM%d", round, sequence)
}

// GameID derives a game session id from its match id.
func GameID(matchID string) string {
	return matchID + "-G"
}

// MessageID generates a unique message_id for an outbound envelope.
func MessageID() string {
	return fmt.Sprintf("msg_%s", GenerateUUID())
}

// GenerateRequestID generates a unique id for HTTP-level request tracing,
// distinct from the envelope's message_id.
func GenerateRequestID() string {
	return fmt.Sprintf("req_%s", GenerateUUID())
}

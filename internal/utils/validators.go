// internal/utils/validators.go
// Validation utility functions for inbound RPC payloads.

package utils

import (
	"fmt"
	"regexp"
)

var playerIDPattern = regexp.MustCompile(`^P\d{2,}$`)

// ValidatePlayerID checks that id looks like a league-assigned player id
// ("P01", "P12", ...) per §4.2.
func ValidatePlayerID(id string) error {
	if !playerIDPattern.MatchString(id) {
		return fmt.Errorf("invalid player id format: %q", id)
	}
	return nil
}

// ValidateMove checks that move falls within [min, max] inclusive, per the
// move_range carried in every game_invite (§5.2).
func ValidateMove(move, min, max int) error {
	if move < min || move > max {
		return fmt.Errorf("move %d out of range [%d, %d]", move, min, max)
	}
	return nil
}

// ValidateRole checks that role is one of the two recognized agent roles.
func ValidateRole(role string) error {
	switch role {
	case "player", "referee":
		return nil
	default:
		return fmt.Errorf("unrecognized agent role: %q", role)
	}
}

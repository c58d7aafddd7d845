// internal/utils/helpers.go
// General utility functions shared across the league's three binaries.

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenerateSecureToken generates a secure random token (32 hex characters).
// Nothing in the module calls it; the bootstrap secret agents present is
// read from LEAGUE_BOOTSTRAP_SECRET.
func GenerateSecureToken() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// MustMarshalJSON marshals v to JSON or panics; reserved for values whose
// marshal failure would indicate a programming error, not bad input.
func MustMarshalJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal JSON: %v", err))
	}
	return json.RawMessage(data)
}

// MinInt returns the minimum of two integers.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxInt returns the maximum of two integers.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

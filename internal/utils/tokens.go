// internal/utils/tokens.go
// Bearer auth_token generation and validation, adapted from the teacher's
// internal/utils/jwt.go. The League Manager signs a JWT encoding the
// holder's agent id and role so that validation never needs a lookup
// table; the token itself stays opaque to its holder per §4.1/§6.

package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AgentClaims are the claims embedded in every issued auth_token.
type AgentClaims struct {
	AgentID string `json:"agent_id"`
	Role    string `json:"role"` // "player" or "referee"
	jwt.RegisteredClaims
}

// IssueToken signs a new bearer token for agentID/role using secret.
func IssueToken(agentID, role, secret string) (string, error) {
	claims := AgentClaims{
		AgentID: agentID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses token and returns the agent id and role it was
// issued for. The core's auth model (§6) is "a bearer credential; no
// scheme beyond equality check is mandated" — signature verification here
// stands in for that equality check without needing a server-side token
// table.
func ValidateToken(token, secret string) (agentID, role string, err error) {
	parsed, err := jwt.ParseWithClaims(token, &AgentClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}
	claims, ok := parsed.Claims.(*AgentClaims)
	if !ok || !parsed.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	return claims.AgentID, claims.Role, nil
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the JWT payload handed to clients. The subject is the user id.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
}

// Caller is the identity resolved from a verified bearer token.
type Caller struct {
	ID       uuid.UUID
	Username string
}

// IsZero reports whether no caller was resolved.
func (c Caller) IsZero() bool {
	return c.ID == uuid.Nil && c.Username == ""
}

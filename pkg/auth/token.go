package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ErrInvalidToken is returned for every verification failure.
var ErrInvalidToken = errors.New("invalid access token")

// MintAccessToken signs a token for subject valid from now until now+ttl.
// A non-positive ttl falls back to the configured expiration.
func MintAccessToken(cfg config.JWTConfig, now time.Time, subject string, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("jwt subject is required")
	}
	if ttl <= 0 {
		ttl = cfg.TTL()
	}

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates signature, algorithm, issuer and expiry against now.
func ParseAccessToken(cfg config.JWTConfig, now time.Time, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Issuer issues and verifies access tokens against an injectable clock.
type Issuer struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewIssuer builds an Issuer. A nil clock uses time.Now.
func NewIssuer(cfg config.JWTConfig, now func() time.Time) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{cfg: cfg, now: now}, nil
}

// DefaultTTL is the lifetime used when Issue receives a non-positive ttl.
func (i *Issuer) DefaultTTL() time.Duration {
	return i.cfg.TTL()
}

// Issue signs a token for subject that expires ttl from now and returns the
// expiry encoded in its exp claim.
func (i *Issuer) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = i.cfg.TTL()
	}
	now := i.now()
	token, err := MintAccessToken(i.cfg, now, subject, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, jwt.NewNumericDate(now.Add(ttl)).Time, nil
}

// Verify returns the subject of a valid, unexpired token.
func (i *Issuer) Verify(token string) (string, error) {
	claims, err := ParseAccessToken(i.cfg, i.now(), token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

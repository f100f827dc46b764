// Package security provides the token codec, token fingerprinting, and
// password hashing used by the auth service and the request middleware.
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sentinel errors for token parsing. Handlers collapse all of them to a
// generic 401; the distinct values exist for diagnostics and metrics.
var (
	// ErrTokenMalformed is returned when the token is not a structurally valid JWT.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrInvalidSignature is returned when the signature does not verify against the configured secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned when the token is well-formed and correctly signed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the identity payload carried inside a signed session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID     int64 `json:"id_usuario"`
	RoleID     int64 `json:"tipo_usuario"`
	EmployeeID int64 `json:"empleado"`
}

// TokenID returns the token's jti. A fresh jti is generated for every
// issuance and never reused.
func (c *Claims) TokenID() string { return c.ID }

// IssuedTime returns the iat claim as a time, or the zero time when absent.
func (c *Claims) IssuedTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiryTime returns the exp claim as a time, or the zero time when absent.
func (c *Claims) ExpiryTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenCodec issues and parses HS256-signed session tokens. It is stateless:
// Issue and Parse are pure functions of their inputs plus wall-clock time.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenCodec returns a TokenCodec signing with the given secret.
// issuer is set as the iss claim; ttl is the token lifetime.
func NewTokenCodec(secret, issuer string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a session token for the given user with a freshly generated
// jti. Returns the token string and the claims it carries.
func (c *TokenCodec) Issue(userID, roleID, employeeID int64) (string, *Claims, error) {
	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   "",
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID:     userID,
		RoleID:     roleID,
		EmployeeID: employeeID,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies the token's signature and expiry and returns its claims.
// Returns ErrTokenExpired for an otherwise valid but expired token,
// ErrInvalidSignature for a signature mismatch, and ErrTokenMalformed for
// anything that is not a structurally valid HS256 JWT.
func (c *TokenCodec) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

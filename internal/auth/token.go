package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for expired, malformed or tampered session
// tokens.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims carries the authenticated identity inside the session
// cookie, replacing the ambient session state of a long-lived UI process.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// GenerateToken issues a signed HS256 session token for the user.
func GenerateToken(user SessionUser, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	return token.SignedString(secret)
}

// ParseToken validates a session token and returns its claims.
func ParseToken(tokenString string, secret []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SessionUser is the identity subset embedded in session tokens.
type SessionUser struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Package token issues and verifies the platform session credential that
// clients exchange a verified Telegram identity for.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"footy-quiz-service/internal/domain"
)

// Claims binds the Telegram user id as the subject plus auxiliary claims
// used by downstream authorization.
type Claims struct {
	TelegramID string `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	jwt.RegisteredClaims
}

// Minter signs and parses HS256 session tokens.
type Minter struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewMinter(secret string, ttl time.Duration) *Minter {
	return &Minter{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Mint issues a credential for a verified identity. Fails when the subject
// is unusable; the caller surfaces this, it is not retried.
func (m *Minter) Mint(identity domain.Identity) (string, error) {
	if identity.TelegramID == "" {
		return "", fmt.Errorf("%w: empty subject", domain.ErrTokenMint)
	}

	now := m.now()
	claims := &Claims{
		TelegramID: identity.TelegramID,
		Username:   identity.Username,
		FirstName:  identity.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.TelegramID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenMint, err)
	}
	return signed, nil
}

// Parse validates a bearer token and returns its claims.
func (m *Minter) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Package auth verifies bearer tokens issued by the account service.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims accepts the user id under "id", "user_id" or the standard subject.
type Claims struct {
	UID    string `json:"id,omitempty"`
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) user() string {
	switch {
	case c.UID != "":
		return c.UID
	case c.UserID != "":
		return c.UserID
	}
	return c.Subject
}

type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (domain.UserID, error) {
	if token == "" {
		return "", domain.ErrMissingToken
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	uid := claims.user()
	if uid == "" {
		return "", fmt.Errorf("%w: no user id", domain.ErrInvalidToken)
	}
	if len(uid) > domain.MaxUserIDLen {
		return "", domain.ErrUserIDTooLong
	}
	return domain.UserID(uid), nil
}

// Issue signs a token for uid. Used by tests and local tooling.
func (v *JWTVerifier) Issue(uid domain.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UID: string(uid),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const RequestIDKey = contextKey("requestID")

// ValidateAccessToken parses and validates a bearer token issued by the
// platform's auth service. Only HS256 is accepted; exp/nbf are checked by the
// parser. Callers inspect the returned claims for role checks.
func ValidateAccessToken(tokenString, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is not configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Require exact HS256 to avoid algorithm confusion.
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

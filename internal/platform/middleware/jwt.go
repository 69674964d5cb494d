package middleware

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HMACValidator validates HS256 tokens issued by the surrounding portal.
type HMACValidator struct {
	key []byte
}

// NewHMACValidator builds a validator for the shared signing key.
func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	out := &JWTClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.UserID = sub
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if out.UserID == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	return out, nil
}

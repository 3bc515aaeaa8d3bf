package service

import (
	"fmt"

	"sweeps-casino/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService. Session issuance lives at
// the auth boundary; the core only validates HS256 bearer tokens carrying
// the owner id in the "uid" claim.
type JWTTokenService struct {
	secret string
	issuer string
}

// NewJWTTokenService creates a validator for externally-issued tokens.
func NewJWTTokenService(secret, issuer string) *JWTTokenService {
	return &JWTTokenService{secret: secret, issuer: issuer}
}

// Validate parses and verifies a token, returning the owner id.
func (s *JWTTokenService) Validate(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperror.ErrInvalidToken()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperror.ErrInvalidToken()
	}
	uid, ok := claims["uid"].(string)
	if !ok {
		return uuid.Nil, apperror.ErrInvalidToken()
	}
	owner, err := uuid.Parse(uid)
	if err != nil {
		return uuid.Nil, apperror.ErrInvalidToken()
	}
	return owner, nil
}

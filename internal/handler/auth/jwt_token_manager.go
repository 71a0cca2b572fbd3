package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "autoroom"

type JWTTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTTokenManager(secret string, ttl time.Duration) *JWTTokenManager {
	return &JWTTokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate — sign an HS256 token for operator
func (tm *JWTTokenManager) Generate(operator string) (string, error) {
	if operator == "" {
		return "", errors.New("operator is required")
	}

	now := time.Now()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   operator,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	)
	return token.SignedString(tm.secret)
}

// Validate — check signature and expiry, return the operator
func (tm *JWTTokenManager) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return tm.secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}

	return claims.Subject, nil
}

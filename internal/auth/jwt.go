package auth

import (
	"fmt"
	"time"

	"starsystem-server/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "starsystem-server"

// Claims grant ownership of a single star system session.
type Claims struct {
	SystemID uuid.UUID `json:"system_id"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret     []byte
	expiration time.Duration
}

func NewTokenIssuer(cfg config.AuthConfig) (*TokenIssuer, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required but not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long for security")
	}
	return &TokenIssuer{secret: []byte(cfg.JWTSecret), expiration: cfg.TokenExpiration}, nil
}

// Issue signs an owner token for systemID.
func (t *TokenIssuer) Issue(systemID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		SystemID: systemID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   systemID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("cannot sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.Subject != claims.SystemID.String() {
			return nil, fmt.Errorf("token subject does not match system")
		}
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

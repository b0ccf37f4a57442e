// Package security provides JWT token utilities
package security

import (
	"errors"
	"log"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/golang-jwt/jwt/v4"
)

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateUserToken creates a JWT token for an authenticated user. Tokens
// carry the principal fields and expire after 24 hours.
func GenerateUserToken(u *user.User, jwtSecret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     u.Role,
		"type":     "user_auth",
		"iat":      time.Now().UTC().Unix(),
		"exp":      time.Now().UTC().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	result, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("ERROR: Failed to sign JWT token: %v", err)
		return "", err
	}

	return result, nil
}

// GetPrincipalFromClaims extracts the authenticated principal from JWT claims.
func GetPrincipalFromClaims(claims jwt.MapClaims) *user.Principal {
	if tokenType, ok := claims["type"].(string); !ok || tokenType != "user_auth" {
		return nil
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil
	}

	return &user.Principal{
		ID:       sub,
		Username: username,
		Role:     role,
	}
}

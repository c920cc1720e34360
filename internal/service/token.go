package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
)

// MintServiceToken issues an HS256 token for a machine caller of the
// trigger and notification API.
func MintServiceToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"type": "service",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}

// ValidateServiceToken checks a service token and returns its subject.
func ValidateServiceToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse service token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != "service" {
		return "", domain.ErrUnauthorized
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", domain.ErrUnauthorized
	}
	return subject, nil
}

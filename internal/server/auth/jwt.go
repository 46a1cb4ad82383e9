// Package auth issues and verifies the HS256 access tokens operators present
// to the gRPC endpoint.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the operator the token was
// issued to.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID string `json:"operator_id"`
}

// GenerateToken signs a token for operatorID valid for validityDuration.
func GenerateToken(operatorID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	if operatorID == "" {
		return "", fmt.Errorf("%w: empty operator id", common.ErrInvalidInput)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			Subject:   operatorID,
		},
		OperatorID: operatorID,
	})

	return token.SignedString(secretKey)
}

// GetOperatorIDFromToken verifies tokenString and returns its operator id.
// Every failure wraps common.ErrInvalidToken; expired tokens also match
// jwt.ErrTokenExpired.
func GetOperatorIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.OperatorID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.OperatorID, nil
}

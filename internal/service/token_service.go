package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
)

// TokenService validates the HS256 access tokens minted by the auth
// service and shared across the platform.
type TokenService struct {
	secret []byte
}

// NewTokenService constructs a token service.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.InstitutionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing institution scope")
	}

	return claims, nil
}

// Issue mints a token for local development and tests.
func (s *TokenService) Issue(userID string, role models.UserRole, institutionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.JWTClaims{
		Role:          role,
		InstitutionID: institutionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

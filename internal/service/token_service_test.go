package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	s := NewTokenService("test-secret")

	token, err := s.Issue("user-1", models.RoleAdmin, "inst-1", time.Hour)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID())
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "inst-1", claims.InstitutionID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("issuer-secret")
	verifier := NewTokenService("other-secret")

	token, err := issuer.Issue("user-1", models.RoleAdmin, "inst-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := NewTokenService("test-secret")

	token, err := s.Issue("user-1", models.RoleAdmin, "inst-1", -time.Minute)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsMissingInstitution(t *testing.T) {
	s := NewTokenService("test-secret")

	token, err := s.Issue("user-1", models.RoleAdmin, "", time.Hour)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
	require.Contains(t, appErrors.FromError(err).Message, "institution")
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	s := NewTokenService("test-secret")

	_, err := s.ValidateToken("not.a.token")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

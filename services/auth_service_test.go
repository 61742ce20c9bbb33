package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
)

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T) (*fakeStore, *authService) {
	t.Helper()
	store := newFakeStore()
	store.addCategory(1, "Primera", 2025, 1)
	store.addPlayer(10, 1, "Ana", "Alvarez", models.PlayerStatusActive)
	store.addPlayer(11, 1, "Bruno", "Benitez", models.PlayerStatusInactive)
	svc := NewAuthService(fakeUserRepo{store}, fakePlayerRepo{store}, testJWTSecret, testLogger()).(*authService)
	svc.now = func() time.Time { return time.Now().Truncate(time.Second) }
	return store, svc
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestAuthServiceAdminLogin(t *testing.T) {
	_, svc := newAuthFixture(t)
	require.NoError(t, svc.EnsureAdmin(context.Background(), "Admin@Club.test", "secret-pass"))
	// второй вызов ничего не меняет
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@club.test", "other-pass"))

	result, err := svc.Login(context.Background(), LoginInput{Email: "admin@club.test", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Empty(t, result.User.PasswordHash)

	claims := parseClaims(t, result.Token)
	assert.Equal(t, string(models.RoleAdmin), claims[ClaimRole])
	assert.Equal(t, float64(result.User.ID), claims[ClaimUserID])
	assert.NotContains(t, claims, ClaimPlayerID)

	_, err = svc.Login(context.Background(), LoginInput{Email: "admin@club.test", Password: "other-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@club.test", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceEnsureAdminRejectsShortPassword(t *testing.T) {
	_, svc := newAuthFixture(t)
	assert.ErrorIs(t, svc.EnsureAdmin(context.Background(), "admin@club.test", "short"), ErrPasswordTooShort)
}

func TestAuthServicePlayerCredentials(t *testing.T) {
	store, svc := newAuthFixture(t)

	user, password, err := svc.CreatePlayerCredentials(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, password, generatedPasswordLength)
	assert.Equal(t, models.RolePlayer, user.Role)
	require.NotNil(t, user.PlayerID)
	assert.Equal(t, 10, *user.PlayerID)
	assert.Empty(t, user.PasswordHash)

	_, _, err = svc.CreatePlayerCredentials(context.Background(), 10)
	assert.ErrorIs(t, err, ErrCredentialsExist)

	result, err := svc.Login(context.Background(), LoginInput{Email: "ana@club.test", Password: password})
	require.NoError(t, err)
	claims := parseClaims(t, result.Token)
	assert.Equal(t, float64(10), claims[ClaimPlayerID])
	assert.Equal(t, string(models.RolePlayer), claims[ClaimRole])

	// деактивированный игрок не может войти
	store.players[10].Status = models.PlayerStatusInactive
	_, err = svc.Login(context.Background(), LoginInput{Email: "ana@club.test", Password: password})
	assert.ErrorIs(t, err, ErrPlayerInactive)
}

func TestAuthServiceCredentialsForInactivePlayer(t *testing.T) {
	_, svc := newAuthFixture(t)
	_, _, err := svc.CreatePlayerCredentials(context.Background(), 11)
	assert.ErrorIs(t, err, ErrPlayerInactive)
	_, _, err = svc.CreatePlayerCredentials(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

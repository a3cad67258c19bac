package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/registrar-api/internal/models"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
)

type authRepoStub struct {
	users          map[string]*models.User
	usersByID      map[string]*models.User
	refreshTokens  map[string]*models.RefreshToken
	createdTokens  []*models.RefreshToken
	passwordSet    string
	revokedForUser string
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		users:         map[string]*models.User{},
		usersByID:     map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
	}
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.passwordSet = passwordHash
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.createdTokens = append(s.createdTokens, token)
	s.refreshTokens[token.Token] = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := s.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedForUser = userID
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "registrar-api",
	}
}

func seedUser(t *testing.T, repo *authRepoStub, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		Email:        "ana@campus.edu",
		PasswordHash: string(hash),
		FullName:     "Ana Silva",
		Role:         models.RoleStudent,
		Active:       true,
	}
	repo.users[user.Email] = user
	repo.usersByID[user.ID] = user
	return user
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@campus.edu", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	require.Len(t, repo.createdTokens, 1)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@campus.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := newAuthRepoStub()
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@campus.edu", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := newAuthRepoStub()
	user := seedUser(t, repo, "s3cret-pass")
	user.Active = false
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@campus.edu", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefresh(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@campus.edu", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.RefreshToken, refreshed.RefreshToken)
}

func TestAuthServiceRefreshExpired(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	repo.refreshTokens["stale"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRevoked(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	repo.refreshTokens["revoked"] = &models.RefreshToken{
		ID:        "rt-2",
		UserID:    "user-1",
		Token:     "revoked",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		Revoked:   true,
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: "revoked"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "n3w-secret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordSet)
	assert.Equal(t, "user-1", repo.revokedForUser, "existing sessions are invalidated")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordSet), []byte("n3w-secret-pass")))
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "n3w-secret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.passwordSet)
}

func TestAuthServiceValidateTokenBadSignature(t *testing.T) {
	repo := newAuthRepoStub()
	seedUser(t, repo, "s3cret-pass")
	issuer := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := issuer.Login(context.Background(), models.LoginRequest{Email: "ana@campus.edu", Password: "s3cret-pass"})
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.AccessTokenSecret = "other-secret"
	verifier := NewAuthService(repo, nil, nil, otherCfg)

	_, err = verifier.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sahana-institute/payroll-api/internal/models"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
)

type fakeUserRepo struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	auditLogs     []models.AuditLog
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (f *fakeUserRepo) addUser(email, password string, role models.UserRole, active bool) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &models.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Role:         role,
		Active:       active,
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLogin = &ts
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string, _ time.Time) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (f *fakeUserRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	for _, t := range f.refreshTokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.refreshTokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := f.refreshTokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	for _, t := range f.refreshTokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeUserRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	f.auditLogs = append(f.auditLogs, *log)
	return nil
}

func newTestAuthService(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "payroll-api-test",
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser("admin@institute.lk", "secret123", models.RoleAdmin, true)
	teacherID := "t-1"
	user.TeacherID = &teacherID

	svc := newTestAuthService(repo)
	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@institute.lk", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, user.ID, res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "t-1", claims.TeacherID)

	require.NotEmpty(t, repo.auditLogs)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser("admin@institute.lk", "secret123", models.RoleAdmin, true)

	svc := newTestAuthService(repo)
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@institute.lk", Password: "wrong",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser("gone@institute.lk", "secret123", models.RoleStaff, false)

	svc := newTestAuthService(repo)
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "gone@institute.lk", Password: "secret123",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser("admin@institute.lk", "secret123", models.RoleAdmin, true)

	svc := newTestAuthService(repo)
	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@institute.lk", Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked; replaying it fails.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser("admin@institute.lk", "secret123", models.RoleAdmin, true)

	svc := newTestAuthService(repo)
	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@institute.lk", Password: "secret123",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{
		OldPassword: "secret123", NewPassword: "betterpass",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@institute.lk", Password: "betterpass",
	})
	require.NoError(t, err)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

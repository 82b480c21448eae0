package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/models"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/testutil"
)

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewAuthService(db, testutil.Config()), db
}

func registerHost(t *testing.T, svc *AuthService) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    " Host@Example.com ",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	resp := registerHost(t, svc)
	assert.Equal(t, "host@example.com", resp.User.Email)
	assert.Equal(t, "host", resp.User.DisplayName)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "host@example.com", Password: "another-password"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "short@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "HOST@example.com", Password: "correct-horse-battery"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "host@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse-battery"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	first := registerHost(t, svc)

	second, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.User.ID, second.User.ID)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: second.RefreshToken})
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: "never-issued"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RefreshRejectsExpired(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()
	resp := registerHost(t, svc)

	require.NoError(t, db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(resp.RefreshToken)).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ConcurrentRefreshRedeemsOnce(t *testing.T) {
	svc, _ := newAuthService(t)
	resp := registerHost(t, svc)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: resp.RefreshToken}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestAuthService_LogoutRevokes(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	resp := registerHost(t, svc)

	require.NoError(t, svc.Logout(ctx, &dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()
	resp := registerHost(t, svc)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, resp.User.ID, "wrong-password"), ErrInvalidCredentials)
	assert.Error(t, svc.DeleteAccount(ctx, resp.User.ID, ""))

	require.NoError(t, svc.DeleteAccount(ctx, resp.User.ID, "correct-horse-battery"))

	_, err := svc.GetUser(ctx, resp.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var tokens int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("user_id = ?", resp.User.ID).Count(&tokens).Error)
	assert.Zero(t, tokens)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, resp.User.ID, "correct-horse-battery"), ErrUserNotFound)
}

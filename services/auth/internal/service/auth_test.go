package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/vente_shop/pkg/mailer"
)

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "empty username", username: "", email: "a@b.co", password: "secret"},
		{name: "empty email", username: "user", email: "", password: "secret"},
		{name: "empty password", username: "user", email: "a@b.co", password: ""},
		{name: "password too long", username: "user", email: "a@b.co", password: strings.Repeat("p", 80)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_Conflict(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)

	_, err = env.svc.Register(ctx, "alice", "other@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.svc.Register(ctx, "alice2", "ALICE@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "bob", "Secret123")

	res, err := env.svc.Login(ctx, "bob", "Secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, user.ID, res.User.ID)

	_, err = env.svc.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, "nobody", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	again, err := env.svc.Login(ctx, "bob", "Secret123")
	require.NoError(t, err)

	_, err = env.svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "second login deactivates the first refresh token")
	_, err = env.svc.Refresh(ctx, again.RefreshToken)
	assert.NoError(t, err)

	reloaded, err := env.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestAuthService_LogOut(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "carl", "Secret123")

	res, err := env.svc.Login(ctx, "carl", "Secret123")
	require.NoError(t, err)

	require.NoError(t, env.svc.LogOut(ctx, res.RefreshToken))
	require.NoError(t, env.svc.LogOut(ctx, ""))

	_, err = env.svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	dora := env.createUser(t, "dora", "Secret123")
	env.createUser(t, "eve", "Secret123")

	updated, err := env.svc.UpdateProfile(ctx, dora.ID, ProfileUpdate{
		Username:  "dora",
		Email:     "dora@new.example",
		FirstName: "Dora",
	})
	require.NoError(t, err)
	assert.Equal(t, "dora@new.example", updated.Email)
	assert.Equal(t, "Dora", updated.FirstName)

	_, err = env.svc.UpdateProfile(ctx, dora.ID, ProfileUpdate{Username: "eve", Email: "dora@new.example"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.svc.UpdateProfile(ctx, dora.ID, ProfileUpdate{Username: "dora", Email: "eve@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.svc.UpdateProfile(ctx, dora.ID, ProfileUpdate{Username: "", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.UpdateProfile(ctx, 999, ProfileUpdate{Username: "ghost", Email: "ghost@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_PasswordReset(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "fay", "OldSecret1")

	login, err := env.svc.Login(ctx, "fay", "OldSecret1")
	require.NoError(t, err)

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "FAY@example.com"))

	var msg mailer.Message
	select {
	case msg = <-env.mail.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("reset mail not sent")
	}
	assert.Equal(t, "fay@example.com", msg.To)

	_, rawLink, found := strings.Cut(msg.Body, "https://shop.example/reset-password?token=")
	require.True(t, found)
	rawToken, _, _ := strings.Cut(rawLink, "\n")
	token, err := url.QueryUnescape(rawToken)
	require.NoError(t, err)

	err = env.svc.ConfirmPasswordReset(ctx, token, "NewSecret1", "Mismatch")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.svc.ConfirmPasswordReset(ctx, token, "NewSecret1", "NewSecret1"))

	err = env.svc.ConfirmPasswordReset(ctx, token, "Another1", "Another1")
	assert.ErrorIs(t, err, ErrInvalidToken, "link is single use")

	_, err = env.svc.Login(ctx, "fay", "OldSecret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, "fay", "NewSecret1")
	assert.NoError(t, err)

	_, err = env.svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "reset revokes sessions")

	assert.ErrorIs(t, env.svc.RequestPasswordReset(ctx, "nobody@example.com"), ErrNotFound)
}

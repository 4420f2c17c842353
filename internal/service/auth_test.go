package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/service"
)

func register(t *testing.T, f *fixture, email string) (*domain.User, *service.TokenPair) {
	t.Helper()
	user, tokens, err := f.auth.Register(context.Background(), service.RegisterInput{
		Name:            "Grace",
		Email:           email,
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
	})
	require.NoError(t, err)
	return user, tokens
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, tokens := register(t, f, "Grace@Example.com")
	assert.Equal(t, "grace@example.com", user.Email)
	assert.Equal(t, domain.AuthProviderPassword, user.Provider)

	id, err := f.auth.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	loggedIn, _, err := f.auth.Login(ctx, service.LoginInput{Email: "grace@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = f.auth.Login(ctx, service.LoginInput{Email: "grace@example.com", Password: "wrong horse"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = f.auth.Login(ctx, service.LoginInput{Email: "nobody@example.com", Password: "whatever1"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	f := newFixture(t)
	register(t, f, "taken@example.com")

	tests := []struct {
		name  string
		input service.RegisterInput
		field string
	}{
		{"short name", service.RegisterInput{Name: "G", Email: "a@b.io", Password: "12345678", ConfirmPassword: "12345678"}, "name"},
		{"bad email", service.RegisterInput{Name: "Grace", Email: "nope", Password: "12345678", ConfirmPassword: "12345678"}, "email"},
		{"short password", service.RegisterInput{Name: "Grace", Email: "a@b.io", Password: "short", ConfirmPassword: "short"}, "password"},
		{"mismatch", service.RegisterInput{Name: "Grace", Email: "a@b.io", Password: "12345678", ConfirmPassword: "87654321"}, "confirm_password"},
		{"taken", service.RegisterInput{Name: "Grace", Email: "taken@example.com", Password: "12345678", ConfirmPassword: "12345678"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.auth.Register(context.Background(), tt.input)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.True(t, strings.HasPrefix(err.Error(), tt.field+":"), err.Error())
		})
	}
}

func TestAuthServiceTokens(t *testing.T) {
	f := newFixture(t)
	user, tokens := register(t, f, "tok@example.com")

	_, err := f.auth.ValidateToken(tokens.RefreshToken)
	require.ErrorIs(t, err, domain.ErrUnauthorized, "refresh token is not an access token")

	_, err = f.auth.RefreshAccessToken(tokens.AccessToken)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.auth.ValidateToken("garbage")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	pair, err := f.auth.RefreshAccessToken(tokens.RefreshToken)
	require.NoError(t, err)
	id, err := f.auth.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	me, err := f.auth.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "tok@example.com", me.Email)
}

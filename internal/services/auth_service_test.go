package services_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/models"
	"github.com/vitcanteen/canteen-backend/internal/seed"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

func seededAuth(t *testing.T, mutate ...func(*config.Config)) (*fixture, *services.AuthService) {
	t.Helper()
	f := newFixture(t, mutate...)
	_, err := seed.Users(context.Background(), f.users, f.auth, f.cfg, seed.Students[1:])
	require.NoError(t, err)
	return f, f.auth
}

func TestLogin(t *testing.T) {
	_, auth := seededAuth(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
		wantRole string
	}{
		{"student", "sarthak.1251090107@vit.edu", "1251090107", nil, "STUDENT"},
		{"student mixed case", "  Sarthak.1251090107@VIT.edu ", "1251090107", nil, "STUDENT"},
		{"owner", "canteen@vit.edu", "canteen", nil, "OWNER"},
		{"wrong prn", "sarthak.1251090107@vit.edu", "1251090108", services.ErrInvalidCredentials, ""},
		{"wrong owner secret", "canteen@vit.edu", "admin", services.ErrInvalidCredentials, ""},
		{"foreign domain", "sarthak.1251090107@gmail.com", "1251090107", services.ErrInvalidFormat, ""},
		{"short prn", "sarthak.12510901@vit.edu", "12510901", services.ErrInvalidFormat, ""},
		{"digits in name", "sarthak2.1251090107@vit.edu", "1251090107", services.ErrInvalidFormat, ""},
		{"well formed but not provisioned", "nobody.1234567890@vit.edu", "1234567890", services.ErrNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := auth.Login(context.Background(), &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantRole, resp.User.Role)
			assert.Empty(t, resp.AccessToken)
		})
	}
}

func TestLogin_RoleComesFromEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := f.auth.HashSecret("1251090175")
	require.NoError(t, err)
	_, err = f.users.CreateIfAbsent(ctx, &models.User{
		Email:    "gaurav.1251090175@vit.edu",
		FullName: "Gaurav Pawar",
		Role:     models.RoleOwner,
		Secret:   hash,
	})
	require.NoError(t, err)

	resp, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "gaurav.1251090175@vit.edu", Password: "1251090175"})
	require.NoError(t, err)
	assert.Equal(t, "STUDENT", resp.User.Role)
}

func TestLogin_IssuesAccessToken(t *testing.T) {
	_, auth := seededAuth(t, func(c *config.Config) { c.JWTSecret = "test-secret" })

	resp, err := auth.Login(context.Background(), &dto.LoginRequest{Email: "canteen@vit.edu", Password: "canteen"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)

	caller, err := auth.CallerFromToken(token)
	require.NoError(t, err)
	assert.True(t, caller.IsOwner())
	assert.Equal(t, resp.User.ID, caller.UserID)
}

func TestRoleForEmail(t *testing.T) {
	auth := services.NewAuthService(nil, testConfig())

	assert.Equal(t, models.RoleOwner, auth.RoleForEmail("canteen@vit.edu"))
	assert.Equal(t, models.RoleOwner, auth.RoleForEmail("CANTEEN@vit.edu"))
	assert.Equal(t, models.RoleStudent, auth.RoleForEmail("harshad.1251090072@vit.edu"))
	assert.Equal(t, models.RoleStudent, auth.RoleForEmail("canteen@gmail.com"))
}

func TestOwnerFromHeader(t *testing.T) {
	auth := services.NewAuthService(nil, testConfig())

	caller, err := auth.OwnerFromHeader("Canteen@VIT.edu")
	require.NoError(t, err)
	assert.True(t, caller.IsOwner())

	for _, header := range []string{"", "harshad.1251090072@vit.edu", "admin@vit.edu"} {
		_, err := auth.OwnerFromHeader(header)
		assert.ErrorIs(t, err, services.ErrUnauthorized, "header %q", header)
	}
}

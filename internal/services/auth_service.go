package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/models"
	"github.com/vitcanteen/canteen-backend/internal/repository"
)

// AuthService checks login credentials and resolves the role of a caller.
//
// The login secret is derived from the email itself: the digit run (PRN) of a
// student address, or a fixed literal for the reserved owner address. This is
// a demo-grade credential and not meant to resist a determined attacker.
type AuthService struct {
	users        *repository.UserRepository
	cfg          *config.Config
	studentEmail *regexp.Regexp
}

func NewAuthService(users *repository.UserRepository, cfg *config.Config) *AuthService {
	pattern := `^[a-z]+\.([0-9]{` + strconv.Itoa(cfg.PRNLength) + `})@` +
		regexp.QuoteMeta(cfg.StudentEmailDomain) + `$`
	return &AuthService{
		users:        users,
		cfg:          cfg,
		studentEmail: regexp.MustCompile(pattern),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoleForEmail is the only place a role is decided. The reserved owner
// address is OWNER, every other address is STUDENT; the stored role column is
// informational.
func (s *AuthService) RoleForEmail(email string) models.Role {
	if normalizeEmail(email) == s.cfg.OwnerEmail {
		return models.RoleOwner
	}
	return models.RoleStudent
}

// SecretForEmail derives the expected login secret from the address shape.
func (s *AuthService) SecretForEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == s.cfg.OwnerEmail {
		return s.cfg.OwnerSecret, nil
	}
	m := s.studentEmail.FindStringSubmatch(email)
	if m == nil {
		return "", ErrInvalidFormat
	}
	return m[1], nil
}

func (s *AuthService) HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	expected, err := s.SecretForEmail(email)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(expected)) != 1 {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, storageError("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Secret), []byte(req.Password)); err != nil {
		slog.Warn("stored secret does not match derived secret", "user_id", user.ID.String())
		return nil, ErrInvalidCredentials
	}

	role := s.RoleForEmail(email)
	if user.Role != role {
		slog.Warn("stored role disagrees with email-derived role",
			"user_id", user.ID.String(), "stored", user.Role, "derived", role)
	}

	resp := &dto.LoginResponse{
		Success: true,
		User: dto.UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     string(role),
		},
	}

	if s.cfg.JWTSecret != "" {
		token, err := s.generateAccessToken(user, role)
		if err != nil {
			return nil, err
		}
		resp.AccessToken = token
	}
	return resp, nil
}

// OwnerFromHeader resolves the owner-identifying header. Any address other
// than the reserved owner address is rejected.
func (s *AuthService) OwnerFromHeader(email string) (Caller, error) {
	email = normalizeEmail(email)
	if email == "" || s.RoleForEmail(email) != models.RoleOwner {
		return Caller{}, ErrUnauthorized
	}
	return Caller{Email: email, Role: models.RoleOwner}, nil
}

// CallerFromToken builds a caller from verified access token claims. The
// role is re-derived from the email claim rather than trusted.
func (s *AuthService) CallerFromToken(token *jwt.Token) (Caller, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Caller{}, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)

	id, err := uuid.Parse(sub)
	if err != nil || email == "" {
		return Caller{}, ErrUnauthorized
	}
	return Caller{UserID: id, Email: normalizeEmail(email), Role: s.RoleForEmail(email)}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, role models.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type mockUserRepository struct {
	byEmail map[string]*domain.User
	byID    map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[uuid.UUID]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.byEmail[strings.ToLower(user.Email)]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.byEmail[strings.ToLower(user.Email)] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	rt, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if rt.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return rt, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	rt, ok := m.tokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	rt.Revoked = true
	return nil
}

func newTestUserService() (UserService, *mockUserRepository, *mockRefreshTokenRepository) {
	userRepo := newMockUserRepository()
	tokenRepo := newMockRefreshTokenRepository()
	return NewUserService(userRepo, tokenRepo, "test-secret", 0, 0), userRepo, tokenRepo
}

func TestNewUserService_ConfiguredExpirationsDriveTokenLifetimes(t *testing.T) {
	userRepo := newMockUserRepository()
	tokenRepo := newMockRefreshTokenRepository()
	svc := NewUserService(userRepo, tokenRepo, "test-secret", 30*time.Minute, 48*time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	accessToken, refreshToken, _, err := svc.Login(ctx, "jane@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}); err != nil {
		t.Fatalf("Access token does not parse: %v", err)
	}
	accessTTL := time.Until(claims.ExpiresAt.Time)
	if accessTTL < 29*time.Minute || accessTTL > 31*time.Minute {
		t.Errorf("Access token expiry should honor the configured 30m, got %s", accessTTL)
	}

	refreshTTL := time.Until(tokenRepo.tokens[refreshToken].ExpiresAt)
	if refreshTTL < 47*time.Hour || refreshTTL > 49*time.Hour {
		t.Errorf("Refresh token expiry should honor the configured 48h, got %s", refreshTTL)
	}
}

func TestNewUserService_ZeroExpirationsFallBackToDefaults(t *testing.T) {
	svc, _, tokenRepo := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	accessToken, refreshToken, _, err := svc.Login(ctx, "jane@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}); err != nil {
		t.Fatalf("Access token does not parse: %v", err)
	}
	if ttl := time.Until(claims.ExpiresAt.Time); ttl > DefaultAccessTokenExpiration || ttl < DefaultAccessTokenExpiration-time.Minute {
		t.Errorf("Access token should default to %s, got %s", DefaultAccessTokenExpiration, ttl)
	}
	if ttl := time.Until(tokenRepo.tokens[refreshToken].ExpiresAt); ttl > DefaultRefreshTokenExpiration || ttl < DefaultRefreshTokenExpiration-time.Minute {
		t.Errorf("Refresh token should default to %s, got %s", DefaultRefreshTokenExpiration, ttl)
	}
}

func TestRegister_HashesPasswordAndAssignsUserRole(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != "user" {
		t.Errorf("New accounts must get the user role, got %q", user.Role)
	}
	if user.PasswordHash == "s3cret-pass" || user.PasswordHash == "" {
		t.Error("Password must be stored hashed")
	}
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe"); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	_, err := svc.Register(ctx, "jane@example.com", "other-pass", "Janet", "Doe")
	if !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("Expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestLogin_ReturnsTokenPairForValidCredentials(t *testing.T) {
	svc, _, tokenRepo := newTestUserService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	accessToken, refreshToken, user, err := svc.Login(ctx, "jane@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Error("Login returned a different user")
	}
	if _, ok := tokenRepo.tokens[refreshToken]; !ok {
		t.Error("Refresh token was not persisted")
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("Access token does not parse: %v", err)
	}
	if claims.UserID != registered.ID || claims.Role != "user" {
		t.Errorf("Unexpected claims: user %s role %q", claims.UserID, claims.Role)
	}
}

func TestLogin_WrongPasswordOrUnknownEmail(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "jane@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshToken_IssuesNewAccessToken(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, refreshToken, _, err := svc.Login(ctx, "jane@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	accessToken, err := svc.RefreshToken(ctx, refreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if accessToken == "" {
		t.Error("Expected a new access token")
	}
}

func TestRefreshToken_RejectsRevokedAndExpired(t *testing.T) {
	svc, _, tokenRepo := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane", "Doe"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, refreshToken, _, err := svc.Login(ctx, "jane@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, refreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Revoked token: expected ErrInvalidToken, got %v", err)
	}

	_, expiredToken, _, err := svc.Login(ctx, "jane@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	tokenRepo.tokens[expiredToken].ExpiresAt = time.Now().Add(-time.Minute)
	if _, err := svc.RefreshToken(ctx, expiredToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expired token: expected ErrTokenExpired, got %v", err)
	}
}

func TestLogout_UnknownTokenIsIdempotent(t *testing.T) {
	svc, _, _ := newTestUserService()

	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("Logging out an unknown token should be a no-op, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aura-store/internal/domain"
	"aura-store/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newUserFixture() (UserService, *mockUserRepository, *mockRefreshTokenRepository) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	return NewUserService(userRepo, refreshTokenRepo, "test-secret"), userRepo, refreshTokenRepo
}

func TestProperty_RegistrationHashesPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are stored as valid bcrypt hashes, never plaintext", prop.ForAll(
		func(email string, password string, name string) bool {
			svc, _, _ := newUserFixture()
			ctx := context.Background()

			user, err := svc.Register(ctx, email, password, name)
			if err != nil {
				return true
			}

			if user.PasswordHash == password {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 3 }),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 7 && len(s) < 60 }),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe"); err != nil {
		t.Fatalf("First registration should succeed: %v", err)
	}

	_, err := svc.Register(ctx, "jane@example.com", "otherpassword", "Jane Again")
	if !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Errorf("Expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestLoginIssuesValidTokens(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe")
	if err != nil {
		t.Fatalf("Registration failed: %v", err)
	}

	accessToken, refreshToken, user, err := svc.Login(ctx, "jane@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Error("Login should return the registered user")
	}
	if refreshToken == "" {
		t.Error("Login should issue a refresh token")
	}

	claims, err := svc.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("Access token should validate: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("Token claims should carry the user ID, got %s", claims.UserID)
	}
	if claims.Role != domain.RoleUser {
		t.Errorf("New accounts get the user role, got %s", claims.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe"); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}

	_, _, _, err := svc.Login(ctx, "jane@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc, _, _ := newUserFixture()

	_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshTokenIssuesNewAccessToken(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe")
	if err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	_, refreshToken, _, err := svc.Login(ctx, "jane@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	newAccessToken, err := svc.RefreshToken(ctx, refreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	claims, err := svc.ValidateToken(newAccessToken)
	if err != nil {
		t.Fatalf("Refreshed token should validate: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Error("Refreshed token should carry the same user ID")
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe"); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	_, refreshToken, _, err := svc.Login(ctx, "jane@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, refreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Revoked token should not refresh, got %v", err)
	}
}

func TestLogoutUnknownTokenIsIdempotent(t *testing.T) {
	svc, _, _ := newUserFixture()

	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Errorf("Logging out an unknown token should not error, got %v", err)
	}
}

func TestRefreshTokenRejectsExpiredToken(t *testing.T) {
	svc, _, refreshTokenRepo := newUserFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe")
	if err != nil {
		t.Fatalf("Registration failed: %v", err)
	}

	expired := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    registered.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	}
	if err := refreshTokenRepo.Create(ctx, expired); err != nil {
		t.Fatalf("Failed to seed expired token: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, "expired-token"); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newUserFixture()

	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Error("Garbage token should be rejected")
	}
}

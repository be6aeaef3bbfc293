package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/msomdec/agenda/internal/domain"
	"github.com/msomdec/agenda/internal/repository/sqlite"
	"github.com/msomdec/agenda/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), testJWTSecret, 4), db
}

func registerForm(username string) service.RegisterForm {
	return service.RegisterForm{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)

	user, err := auth.Register(context.Background(), service.RegisterForm{
		Username:        "  Alice ",
		Email:           "Alice@Example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == 0 {
		t.Fatal("expected user ID to be set")
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed lower-cased username alice, got %q", user.Username)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lower-cased email, got %s", user.Email)
	}
	if user.PasswordHash == "password123" {
		t.Fatal("password stored in plain text")
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerForm("alice")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	second := registerForm("alice")
	second.Email = "another@example.com"
	_, err := auth.Register(ctx, second)
	if !errors.Is(err, domain.ErrDuplicateCredential) {
		t.Fatalf("expected ErrDuplicateCredential, got %v", err)
	}

	var count int
	if err := db.SqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = 'alice'").Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single alice row, got %d", count)
	}
}

func TestAuthService_Register_UsernameIgnoresCase(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerForm("carol")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	second := registerForm("Carol")
	second.Email = "carol2@example.com"
	if _, err := auth.Register(ctx, second); !errors.Is(err, domain.ErrDuplicateCredential) {
		t.Fatalf("expected ErrDuplicateCredential for Carol, got %v", err)
	}

	if _, err := auth.Verify(ctx, "CAROL", "password123"); err != nil {
		t.Fatalf("Verify with different case: %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerForm("bob")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	second := registerForm("robert")
	second.Email = "BOB@example.com"
	_, err := auth.Register(ctx, second)
	if !errors.Is(err, domain.ErrDuplicateCredential) {
		t.Fatalf("expected ErrDuplicateCredential, got %v", err)
	}
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*service.RegisterForm)
	}{
		{"empty username", func(f *service.RegisterForm) { f.Username = "" }},
		{"short username", func(f *service.RegisterForm) { f.Username = "ab" }},
		{"username with spaces", func(f *service.RegisterForm) { f.Username = "a b c" }},
		{"empty email", func(f *service.RegisterForm) { f.Email = "" }},
		{"malformed email", func(f *service.RegisterForm) { f.Email = "not-an-email" }},
		{"weak password", func(f *service.RegisterForm) { f.Password, f.ConfirmPassword = "short", "short" }},
		{"password mismatch", func(f *service.RegisterForm) { f.ConfirmPassword = "different456" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := registerForm("valid_name")
			tc.mutate(&form)
			_, err := auth.Register(ctx, form)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Verify(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, registerForm("verify"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := auth.Verify(ctx, "verify", "password123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, user.ID)
	}

	if _, err := auth.Verify(ctx, "verify", "wrongpassword"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, err := auth.Verify(ctx, "nobody", "password123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}
}

func TestAuthService_LoginAndValidateToken(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerForm("jwtuser"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := auth.Login(ctx, "jwtuser", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	userID, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user ID %d, got %d", user.ID, userID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerForm("wrongpw")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := auth.Login(ctx, "wrongpw", "wrongpassword")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_JWT_InvalidToken(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.ValidateToken("not-a-valid-jwt")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_JWT_TamperedToken(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerForm("tamper")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.Login(ctx, "tamper", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Tamper with the token by flipping several characters in the signature.
	tampered := token[:len(token)-5] + "XXXXX"
	if _, err := auth.ValidateToken(tampered); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestAuthService_JWT_WrongSecret(t *testing.T) {
	auth1, db := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth1.Register(ctx, registerForm("secret")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth1.Login(ctx, "secret", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	auth2 := service.NewAuthService(db.Users(), "a-completely-different-secret", 4)
	if _, err := auth2.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerForm("changer"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	err = auth.ChangePassword(ctx, user.ID, service.PasswordForm{
		OldPassword:     "password123",
		NewPassword:     "newpassword456",
		ConfirmPassword: "newpassword456",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := auth.Verify(ctx, "changer", "password123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := auth.Verify(ctx, "changer", "newpassword456"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerForm("keeper"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	err = auth.ChangePassword(ctx, user.ID, service.PasswordForm{
		OldPassword:     "not-my-password",
		NewPassword:     "newpassword456",
		ConfirmPassword: "newpassword456",
	})
	if !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	if _, err := auth.Verify(ctx, "keeper", "password123"); err != nil {
		t.Fatalf("password changed despite wrong old password: %v", err)
	}
}

func TestAuthService_ChangePassword_InvalidNewPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerForm("shorty"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	err = auth.ChangePassword(ctx, user.ID, service.PasswordForm{
		OldPassword:     "password123",
		NewPassword:     "short",
		ConfirmPassword: "short",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

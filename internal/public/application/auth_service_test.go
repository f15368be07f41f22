package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "survey-feedback-api",
		TTL:    time.Hour,
	}
}

func TestRegisterCreatesResponderAndMintsToken(t *testing.T) {
	repo := newFakeResponderRepository()
	svc := NewAuthService(repo, testTokenConfig())

	session, err := svc.Register(context.Background(), RegisterCommand{
		Email:                "  Responder1@Example.com ",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if session.Responder.Email != "responder1@example.com" {
		t.Errorf("email not normalized: %s", session.Responder.Email)
	}
	if session.ExpiresIn != 3600 {
		t.Errorf("unexpected expires_in: %d", session.ExpiresIn)
	}
	if session.Responder.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(session.Responder.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not verify the password: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(session.Token, claims, func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if claims.Subject != session.Responder.ID {
		t.Errorf("token subject %q does not match responder id %q", claims.Subject, session.Responder.ID)
	}
	if claims.Issuer != "survey-feedback-api" {
		t.Errorf("unexpected issuer: %s", claims.Issuer)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeResponderRepository(), testTokenConfig())

	cases := []struct {
		name  string
		cmd   RegisterCommand
		field string
	}{
		{"missing email", RegisterCommand{Password: "password123", PasswordConfirmation: "password123"}, "email"},
		{"invalid email", RegisterCommand{Email: "not-an-email", Password: "password123", PasswordConfirmation: "password123"}, "email"},
		{"short password", RegisterCommand{Email: "a@example.com", Password: "123", PasswordConfirmation: "123"}, "password"},
		{"confirmation mismatch", RegisterCommand{Email: "a@example.com", Password: "password123", PasswordConfirmation: "different"}, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.cmd)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields[tc.field]) == 0 {
				t.Errorf("expected a message for field %q, got %+v", tc.field, verr.Fields)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeResponderRepository()
	svc := NewAuthService(repo, testTokenConfig())

	cmd := RegisterCommand{
		Email:                "dup@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	if _, err := svc.Register(context.Background(), cmd); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(context.Background(), cmd)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for duplicate email, got %v", err)
	}
	if len(verr.Fields["email"]) == 0 {
		t.Errorf("expected email field message, got %+v", verr.Fields)
	}
}

func TestLoginSucceedsWithCorrectCredentials(t *testing.T) {
	repo := newFakeResponderRepository()
	svc := NewAuthService(repo, testTokenConfig())

	if _, err := svc.Register(context.Background(), RegisterCommand{
		Email:                "login@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	session, err := svc.Login(context.Background(), LoginCommand{
		Email:    "Login@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Token == "" {
		t.Error("login session has no token")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeResponderRepository()
	svc := NewAuthService(repo, testTokenConfig())

	if _, err := svc.Register(context.Background(), RegisterCommand{
		Email:                "login@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginCommand{
		Email:    "login@example.com",
		Password: "wrong-password",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	// Unknown accounts fail identically so account existence does not leak.
	if _, err := svc.Login(context.Background(), LoginCommand{
		Email:    "nobody@example.com",
		Password: "password123",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown account: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestProfileReturnsResponder(t *testing.T) {
	repo := newFakeResponderRepository()
	svc := NewAuthService(repo, testTokenConfig())

	session, err := svc.Register(context.Background(), RegisterCommand{
		Email:                "me@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	responder, err := svc.Profile(context.Background(), session.Responder.ID)
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if responder.Email != "me@example.com" {
		t.Errorf("unexpected profile: %+v", responder)
	}

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, domain.ErrResponderNotFound) {
		t.Errorf("expected ErrResponderNotFound, got %v", err)
	}
}

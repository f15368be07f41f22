package application

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

const minPasswordLength = 6

// TokenConfig holds the signing material for issued bearer tokens.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// authService implements responder registration and login with bcrypt
// credential hashing and HS256 bearer tokens.
type authService struct {
	responders ResponderRepository
	tokens     TokenConfig
	now        func() time.Time
}

// NewAuthService builds the auth use-cases on top of the responder store.
func NewAuthService(responders ResponderRepository, tokens TokenConfig) AuthService {
	return &authService{responders: responders, tokens: tokens, now: time.Now}
}

func (s *authService) Register(ctx context.Context, cmd RegisterCommand) (*AuthSession, error) {
	verr := &domain.ValidationError{}

	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		verr.Add("email", err.Error())
	}
	if len(cmd.Password) < minPasswordLength {
		verr.Add("password", "password must be at least 6 characters")
	}
	if cmd.Password != cmd.PasswordConfirmation {
		verr.Add("password", "password confirmation does not match")
	}
	if !verr.Empty() {
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	responder, err := s.responders.Create(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.NewValidationError("email", "email has already been taken")
		}
		return nil, err
	}

	return s.session(*responder)
}

func (s *authService) Login(ctx context.Context, cmd LoginCommand) (*AuthSession, error) {
	verr := &domain.ValidationError{}

	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		verr.Add("email", err.Error())
	}
	if cmd.Password == "" {
		verr.Add("password", "password is required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	responder, err := s.responders.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrResponderNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(responder.PasswordHash), []byte(cmd.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.session(*responder)
}

func (s *authService) Profile(ctx context.Context, responderID string) (*domain.Responder, error) {
	return s.responders.FindByID(ctx, responderID)
}

// session mints a bearer token for the responder.
func (s *authService) session(responder domain.Responder) (*AuthSession, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   responder.ID,
		Issuer:    s.tokens.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokens.TTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, responderClaims{
		RegisteredClaims: claims,
		Email:            responder.Email,
	}).SignedString(s.tokens.Secret)
	if err != nil {
		return nil, err
	}

	return &AuthSession{
		Responder: responder,
		Token:     token,
		ExpiresIn: int(s.tokens.TTL / time.Second),
	}, nil
}

// responderClaims is the issued token payload.
type responderClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

func normalizeEmail(value string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", errors.New("email is required")
	}
	if len(trimmed) > 254 {
		return "", errors.New("email must be at most 254 characters")
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", errors.New("email format is invalid")
	}
	return trimmed, nil
}

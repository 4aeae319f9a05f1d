package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"paldeck_server/models"
	"paldeck_server/store"
)

// Claims are the JWT claims of a session token. Subject is the account id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles email + password accounts and session tokens
type AuthService struct {
	Accounts store.AccountStore
	Secret   []byte
	TTL      time.Duration
	Log      *zap.Logger

	now     func() time.Time
	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

// NewAuthService creates an AuthService
func NewAuthService(accounts store.AccountStore, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		Accounts: accounts,
		Secret:   []byte(secret),
		TTL:      ttl,
		Log:      log,
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}
}

// SignUp validates the form, creates the account and returns a session
func (s *AuthService) SignUp(ctx context.Context, email, password, confirm string) (*models.AuthResponse, error) {
	if err := ValidateSignUp(email, password, confirm); err != nil {
		return nil, err
	}
	email, _ = NormalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := models.Account{
		Email:        email,
		ID:           uuid.NewString(),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Accounts.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.Log.Info("✅ account created", zap.String("userId", acct.ID))
	return s.issue(acct)
}

// SignIn checks credentials and returns a session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	acct, err := s.Accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(*acct)
}

// SignOut revokes the token until it would have expired anyway
func (s *AuthService) SignOut(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	exp := s.now().Add(s.TTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.revoked[claims.ID] = exp
}

// Verify parses a token and rejects expired, forged or revoked ones
func (s *AuthService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}
	return claims, nil
}

func (s *AuthService) issue(acct models.Account) (*models.AuthResponse, error) {
	now := s.now()
	exp := now.Add(s.TTL)
	claims := Claims{
		Email: acct.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.AuthResponse{
		Token:     signed,
		ExpiresAt: exp.Unix(),
		User:      models.User{ID: acct.ID, Email: acct.Email},
	}, nil
}

func (s *AuthService) pruneLocked() {
	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}

package service

import (
	"context"
	"fmt"

	"pos/internal/crm"
	"pos/internal/domain"
	"pos/internal/redis"
)

// AuthBackend is the part of the CRM that authenticates operators.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*crm.AuthResult, error)
	Signup(ctx context.Context, email, password, name string) (*crm.AuthResult, error)
}

// AuthService logs operators in and out of the CRM.
type AuthService struct {
	backend  AuthBackend
	sessions redis.SessionStoreInterface
}

// NewAuthService creates a new AuthService.
func NewAuthService(backend AuthBackend, sessions redis.SessionStoreInterface) *AuthService {
	return &AuthService{
		backend:  backend,
		sessions: sessions,
	}
}

// Login authenticates the operator and persists the session.
func (s *AuthService) Login(ctx context.Context, form LoginForm) (domain.Session, error) {
	form.normalize()
	if err := form.validate(); err != nil {
		return domain.Session{}, err
	}

	result, err := s.backend.Login(ctx, form.Email, form.Password)
	if err != nil {
		return domain.Session{}, err
	}

	return s.store(ctx, result)
}

// Signup creates an operator account and persists its session.
func (s *AuthService) Signup(ctx context.Context, form SignupForm) (domain.Session, error) {
	form.normalize()
	if err := form.validate(); err != nil {
		return domain.Session{}, err
	}

	result, err := s.backend.Signup(ctx, form.Email, form.Password, form.Name)
	if err != nil {
		return domain.Session{}, err
	}

	return s.store(ctx, result)
}

// Logout forgets the stored session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Session returns the stored session, or ErrNotAuthenticated when there is none.
func (s *AuthService) Session(ctx context.Context) (domain.Session, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.Authenticated() {
		return domain.Session{}, ErrNotAuthenticated
	}
	return session, nil
}

func (s *AuthService) store(ctx context.Context, result *crm.AuthResult) (domain.Session, error) {
	if result == nil || result.AccessToken == "" {
		return domain.Session{}, fmt.Errorf("%w: no access token in response", ErrNotAuthenticated)
	}

	session := domain.Session{Token: result.AccessToken, UserName: result.UserName}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

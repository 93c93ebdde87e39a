package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
	"userauth/internal/validation"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

// SignupInput is the signup request body.
type SignupInput struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Validate checks presence first, then email shape, then lengths.
func (in SignupInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return apperrors.ErrFieldsRequired
	}
	if err := validation.Var(strings.TrimSpace(in.Email), "email"); err != nil {
		return apperrors.ErrInvalidEmail
	}
	if err := validation.Struct(in.normalized()); err != nil {
		return err
	}
	if len(in.Password) > maxPasswordBytes {
		return apperrors.NewValidationError("password must be at most 72 bytes")
	}
	return nil
}

func (in SignupInput) normalized() SignupInput {
	return SignupInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Password: in.Password,
	}
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return apperrors.NewValidationError("Email and password are required")
	}
	return nil
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
}

type authService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	issuer   auth.TokenIssuer
	options
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, issuer auth.TokenIssuer, opts ...Option) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		options:  buildOptions(opts),
	}
}

// Signup validates the input, stores a new user with a hashed password and
// issues a token for it. A token failure leaves the created user in place.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in = in.normalized()

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailInUse
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email existence: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup won the unique index.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.publish(ctx, model.UserCreated, user)

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Login verifies credentials and issues a token.
func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return nil, apperrors.ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.recordFailure(ctx, email)
		return nil, s.loginError(apperrors.ErrEmailNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, s.loginError(apperrors.ErrInvalidPassword)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn("reset login failures", zap.Error(err))
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Public(), Token: token}, nil
}

func (s *authService) loginError(err error) error {
	if s.unifyLoginErrors {
		return apperrors.ErrInvalidCredentials
	}
	return err
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.Failure(ctx, email); err != nil {
		s.logger.Warn("record login failure", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"userauth/internal/cache"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
	"userauth/internal/validation"
)

// EditUserInput is the edit request body. It is held to the signup rules.
type EditUserInput struct {
	Name  string `json:"name" validate:"required,min=3,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

func (in EditUserInput) Validate() error {
	return validation.Struct(in.normalized())
}

func (in EditUserInput) normalized() EditUserInput {
	return EditUserInput{
		Name:  strings.TrimSpace(in.Name),
		Email: normalizeEmail(in.Email),
	}
}

// UserService exposes domain operations.
type UserService interface {
	FetchOne(ctx context.Context, id string) (*model.PublicUser, error)
	Edit(ctx context.Context, id string, in EditUserInput) (*model.PublicUser, error)
	Delete(ctx context.Context, id string) (*model.PublicUser, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	options
}

// NewUserService builds a UserService with repository and cache. A nil cache
// disables caching.
func NewUserService(repo repository.UserRepository, cache *cache.Client, opts ...Option) UserService {
	return &userService{repo: repo, cache: cache, options: buildOptions(opts)}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) FetchOne(ctx context.Context, id string) (*model.PublicUser, error) {
	userID, err := parseUserID(id)
	if err != nil {
		return nil, err
	}

	if data, _ := s.cache.Get(ctx, s.cacheKey(userID)); data != nil {
		var cached model.PublicUser
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "fetch user")
	}

	public := user.Public()
	if payload, err := json.Marshal(public); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(userID), payload, s.userCacheTTL)
	}
	return &public, nil
}

func (s *userService) Edit(ctx context.Context, id string, in EditUserInput) (*model.PublicUser, error) {
	userID, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in = in.normalized()

	user, err := s.repo.Update(ctx, userID, repository.UserPatch{Name: in.Name, Email: in.Email})
	if err != nil {
		return nil, storeError(err, "edit user")
	}

	s.invalidate(ctx, userID)
	s.publish(ctx, model.UserUpdated, user)

	public := user.Public()
	return &public, nil
}

func (s *userService) Delete(ctx context.Context, id string) (*model.PublicUser, error) {
	userID, err := parseUserID(id)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.DeleteByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "delete user")
	}

	s.invalidate(ctx, userID)
	s.publish(ctx, model.UserDeleted, user)

	public := user.Public()
	return &public, nil
}

func (s *userService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("invalidate cached user", zap.String("user_id", id), zap.Error(err))
	}
}

// parseUserID rejects identifiers that are not UUIDs before they reach the store.
func parseUserID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperrors.ErrInvalidUserID
	}
	return parsed.String(), nil
}

func storeError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.ErrEmailInUse
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/internal/modules/user/dto"
	"anoa.com/minimalblog/internal/modules/user/repository"
	"anoa.com/minimalblog/pkg/apperror"
	"anoa.com/minimalblog/pkg/password"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownEmail  = fmt.Errorf("email not registered: %w", apperror.ErrUnauthorized)
	ErrWrongPassword = fmt.Errorf("password mismatch: %w", apperror.ErrUnauthorized)
)

type AuthService interface {
	// Register creates a reader account. A taken email yields ErrConflict.
	Register(ctx context.Context, input dto.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input dto.LoginInput) (*entity.User, error)
}

type authService struct {
	repo   repository.UserRepository
	hasher *password.Hasher
}

func NewAuthService(repo repository.UserRepository, hasher *password.Hasher) AuthService {
	return &authService{repo: repo, hasher: hasher}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*entity.User, error) {
	email := strings.TrimSpace(input.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s: %w", email, apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, password.ErrEmptyPassword) {
			return nil, apperror.NewValidationError(map[string]string{"password": "Password is required"})
		}
		return nil, err
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", user.ID).Bool("admin", user.IsAdmin).Msg("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*entity.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	return user, nil
}

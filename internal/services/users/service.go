package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rmdelbarrio/adet/internal/domain/enums"
	"github.com/rmdelbarrio/adet/internal/domain/model"
	pgrepo "github.com/rmdelbarrio/adet/internal/repo/postgres"
	"github.com/rmdelbarrio/adet/internal/security"
)

const maxUsernameLen = 64

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("username already exists")
)

type UserStore interface {
	Create(ctx context.Context, username, passwordHash string, role enums.Role) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, userID int64, role enums.Role) error
	Delete(ctx context.Context, userID int64) error
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

func (s *Service) Register(ctx context.Context, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.User{}, ErrValidation
	}
	if len(username) > maxUsernameLen {
		return model.User{}, ErrValidation
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, username, hash, enums.RoleUser)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUsernameTaken) {
			return model.User{}, ErrAlreadyExists
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *Service) List(ctx context.Context) ([]model.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) UpdateRole(ctx context.Context, userID int64, role string) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrValidation
	}

	parsed := enums.Role(strings.ToLower(strings.TrimSpace(role)))
	if !parsed.Valid() {
		return model.User{}, ErrValidation
	}

	if err := s.store.UpdateRole(ctx, userID, parsed); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("update user role: %w", err)
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("reload user: %w", err)
	}

	return user, nil
}

func (s *Service) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

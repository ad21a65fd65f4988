package positions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rmdelbarrio/adet/internal/domain/model"
	pgrepo "github.com/rmdelbarrio/adet/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("position not found")
	ErrCodeTaken  = errors.New("position code already exists")
)

type PositionStore interface {
	Create(ctx context.Context, code, name string, minSalary *float64, department *string, userID int64) (model.Position, error)
	GetByID(ctx context.Context, id int64) (model.Position, error)
	GetByCode(ctx context.Context, code string) (model.Position, error)
	List(ctx context.Context) ([]model.Position, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Position, error)
	Update(ctx context.Context, id int64, upd pgrepo.PositionUpdate) (model.Position, error)
	Delete(ctx context.Context, id int64) error
}

type CreateInput struct {
	Code       string
	Name       string
	MinSalary  *float64
	Department *string
	UserID     int64
}

type UpdateInput struct {
	Code       *string
	Name       *string
	MinSalary  *float64
	Department *string
}

type Service struct {
	store PositionStore
}

func NewService(store PositionStore) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Position, error) {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" || in.UserID <= 0 {
		return model.Position{}, ErrValidation
	}

	position, err := s.store.Create(ctx, in.Code, in.Name, in.MinSalary, in.Department, in.UserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPositionCodeTaken) {
			return model.Position{}, ErrCodeTaken
		}
		return model.Position{}, fmt.Errorf("create position: %w", err)
	}

	return position, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (model.Position, error) {
	if id <= 0 {
		return model.Position{}, ErrValidation
	}

	position, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPositionNotFound) {
			return model.Position{}, ErrNotFound
		}
		return model.Position{}, fmt.Errorf("get position: %w", err)
	}

	return position, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (model.Position, error) {
	if strings.TrimSpace(code) == "" {
		return model.Position{}, ErrValidation
	}

	position, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPositionNotFound) {
			return model.Position{}, ErrNotFound
		}
		return model.Position{}, fmt.Errorf("get position by code: %w", err)
	}

	return position, nil
}

func (s *Service) List(ctx context.Context) ([]model.Position, error) {
	positions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]model.Position, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}

	positions, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list positions by user: %w", err)
	}
	return positions, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (model.Position, error) {
	if id <= 0 {
		return model.Position{}, ErrValidation
	}
	if in.Code != nil && strings.TrimSpace(*in.Code) == "" {
		return model.Position{}, ErrValidation
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.Position{}, ErrValidation
	}

	position, err := s.store.Update(ctx, id, pgrepo.PositionUpdate{
		Code:       in.Code,
		Name:       in.Name,
		MinSalary:  in.MinSalary,
		Department: in.Department,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrPositionNotFound):
			return model.Position{}, ErrNotFound
		case errors.Is(err, pgrepo.ErrPositionCodeTaken):
			return model.Position{}, ErrCodeTaken
		}
		return model.Position{}, fmt.Errorf("update position: %w", err)
	}

	return position, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgrepo.ErrPositionNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete position: %w", err)
	}

	return nil
}

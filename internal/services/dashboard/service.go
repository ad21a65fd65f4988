package dashboard

import (
	"context"
	"fmt"

	"github.com/rmdelbarrio/adet/internal/domain/model"
)

const defaultRecentUsers = 5

type UserStore interface {
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.User, error)
}

type Stats struct {
	UserCount   int64
	RecentUsers []model.User
}

type Service struct {
	users  UserStore
	recent int
}

func NewService(users UserStore, recent int) *Service {
	if recent <= 0 {
		recent = defaultRecentUsers
	}

	return &Service{
		users:  users,
		recent: recent,
	}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}

	recent, err := s.users.ListRecent(ctx, s.recent)
	if err != nil {
		return Stats{}, fmt.Errorf("list recent users: %w", err)
	}

	return Stats{
		UserCount:   count,
		RecentUsers: recent,
	}, nil
}

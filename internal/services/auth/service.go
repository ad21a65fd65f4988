package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rmdelbarrio/adet/internal/domain/model"
	pgrepo "github.com/rmdelbarrio/adet/internal/repo/postgres"
	"github.com/rmdelbarrio/adet/internal/security"
)

type Service struct {
	tokens *TokenManager
	users  UserStore
}

func NewService(tokens *TokenManager, users UserStore) *Service {
	return &Service{
		tokens: tokens,
		users:  users,
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			// Same outcome as a hash mismatch, so usernames can't be enumerated.
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user by username: %w", err)
	}

	if err := security.CheckPassword(user.PasswordHash, password); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueForUser(ctx, user)
}

// Refresh validates the presented token, cross-checks it against the
// record that owns it, and atomically replaces the stored value.
// Rotation is single-use: once the swap lands, the old token can no
// longer match the store and any replay fails at the lookup gate.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, err := s.matchRefreshToken(ctx, refreshToken)
	if err != nil {
		return AuthResult{}, err
	}

	// New claims come from the store record, not the decoded payload: a
	// role change since the token was issued takes effect right here.
	newRefresh, _, err := s.tokens.IssueRefreshToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, newRefresh); err != nil {
		if errors.Is(err, pgrepo.ErrRefreshTokenStale) || errors.Is(err, pgrepo.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidToken
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.tokens.IssueAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newRefresh,
		AccessExpires: accessExpires,
		Me: Me{
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		},
	}, nil
}

// Logout runs the same gates as Refresh and then revokes the session by
// nulling the stored token. A stale or invalid token fails loudly with
// the rotation taxonomy; an attacker presenting one learns nothing new.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrInvalidInput
	}

	user, err := s.matchRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.users.ClearRefreshToken(ctx, user.ID, refreshToken); err != nil {
		if errors.Is(err, pgrepo.ErrRefreshTokenStale) || errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("clear refresh token: %w", err)
	}

	return nil
}

// ValidateAccessToken is purely cryptographic plus time-based; it never
// touches the store.
func (s *Service) ValidateAccessToken(raw string) (Claims, error) {
	claims, err := s.tokens.ParseAccessToken(raw)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Authorize compares an already-verified claim role against the target
// operation's required roles. No required roles means the operation is
// open to any authenticated identity.
func Authorize(role string, requiredRoles ...string) bool {
	if len(requiredRoles) == 0 {
		return true
	}
	for _, required := range requiredRoles {
		if strings.EqualFold(strings.TrimSpace(role), strings.TrimSpace(required)) {
			return true
		}
	}
	return false
}

func (s *Service) issueForUser(ctx context.Context, user model.User) (AuthResult, error) {
	refreshToken, _, err := s.tokens.IssueRefreshToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return AuthResult{}, fmt.Errorf("store refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.tokens.IssueAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
		Me: Me{
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		},
	}, nil
}

// matchRefreshToken applies the shared gates: decode, exact-match store
// lookup, then subject cross-check against the matched record.
func (s *Service) matchRefreshToken(ctx context.Context, refreshToken string) (model.User, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return model.User{}, ErrInvalidToken
	}

	user, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			// Cryptographically valid but already rotated or logged out.
			return model.User{}, ErrInvalidToken
		}
		return model.User{}, fmt.Errorf("find user by refresh token: %w", err)
	}

	if user.ID != claims.UserID {
		return model.User{}, ErrPayloadMismatch
	}

	return user, nil
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rmdelbarrio/adet/internal/domain/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials covers both an unknown username and a hash
	// mismatch; callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers signature, expiry and decode failures as well
	// as a refresh token that no longer matches the stored value.
	ErrInvalidToken = errors.New("invalid token")

	// ErrPayloadMismatch means the decoded subject disagrees with the
	// store record the token string matched.
	ErrPayloadMismatch = errors.New("refresh token payload mismatch")
)

// UserStore is the single-record view of the users table the session
// lifecycle needs. Absence of a record is reported as
// postgres.ErrUserNotFound; a lost rotation race as
// postgres.ErrRefreshTokenStale.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByRefreshToken(ctx context.Context, token string) (model.User, error)
	SetRefreshToken(ctx context.Context, userID int64, token *string) error
	RotateRefreshToken(ctx context.Context, userID int64, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, userID int64, oldToken string) error
}

type Claims struct {
	UserID    int64
	Username  string
	Role      string
	ExpiresAt time.Time
}

type Me struct {
	ID       int64
	Username string
	Role     string
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}

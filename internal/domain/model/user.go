package model

import (
	"time"

	"github.com/rmdelbarrio/adet/internal/domain/enums"
)

type User struct {
	ID                  int64      `json:"id"`
	Username            string     `json:"username"`
	PasswordHash        string     `json:"-"`
	Role                enums.Role `json:"role"`
	CurrentRefreshToken *string    `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

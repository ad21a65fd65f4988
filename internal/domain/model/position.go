package model

import "time"

type Position struct {
	ID         int64     `json:"position_id"`
	Code       string    `json:"position_code"`
	Name       string    `json:"position_name"`
	MinSalary  *float64  `json:"min_salary"`
	Department *string   `json:"department"`
	UserID     int64     `json:"user_id"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

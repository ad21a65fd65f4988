package dto

type DashboardStatsResponse struct {
	Message     string         `json:"message"`
	UserCount   int64          `json:"user_count"`
	RecentUsers []UserResponse `json:"recent_users"`
}

package user

import (
	"time"

	"github.com/liuqy/experiment-management/internal/auth"
)

// UserResponse is the admin view of an account with its grant set.
type UserResponse struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Role      string       `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
	Grants    []auth.Grant `json:"permissions"`
}

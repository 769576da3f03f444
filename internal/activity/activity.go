package activity

import "time"

// Recorder appends audit entries. Implementations must never propagate
// their own failures into the caller's error path.
type Recorder interface {
	Record(activityType, description string, userID *int64)
}

type ActivityResponse struct {
	ID           int64     `json:"id"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	UserID       *int64    `json:"user_id,omitempty"`
	Username     *string   `json:"username,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

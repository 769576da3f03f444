package activity

import "time"

// Activity is an append-only audit row. Rows are never updated or deleted
// by normal operation.
type Activity struct {
	ID           int64     `gorm:"primaryKey"`
	ActivityType string    `gorm:"column:activity_type;not null"`
	Description  string    `gorm:"column:description;type:text;not null"`
	UserID       *int64    `gorm:"column:user_id"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (Activity) TableName() string { return "activities" }

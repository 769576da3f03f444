package batch

import "time"

type Batch struct {
	ID          int64      `gorm:"primaryKey"`
	BatchNumber string     `gorm:"column:batch_number;uniqueIndex;not null"`
	StartTime   time.Time  `gorm:"column:start_time;not null"`
	EndTime     *time.Time `gorm:"column:end_time"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Batch) TableName() string { return "batches" }

package sensor

import "time"

type Sensor struct {
	ID        int64      `gorm:"primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	PersonID  int64      `gorm:"column:person_id;not null"`
	BatchID   int64      `gorm:"column:batch_id;not null"`
	StartTime time.Time  `gorm:"column:start_time;not null"`
	EndTime   *time.Time `gorm:"column:end_time"`
	EndReason *string    `gorm:"column:end_reason"`
	CreatedAt time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Sensor) TableName() string { return "sensors" }

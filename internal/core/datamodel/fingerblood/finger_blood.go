package fingerblood

import "time"

type FingerBloodRecord struct {
	ID                int64     `gorm:"primaryKey"`
	PersonID          int64     `gorm:"column:person_id;not null"`
	BatchID           int64     `gorm:"column:batch_id;not null"`
	CollectionTime    time.Time `gorm:"column:collection_time;not null"`
	BloodGlucoseValue float64   `gorm:"column:blood_glucose_value;type:decimal(5,2);not null"`
	CreatedAt         time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time `gorm:"column:updated_at;default:now()"`
}

func (FingerBloodRecord) TableName() string { return "finger_blood_records" }

package person

import "time"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

type Person struct {
	ID        int64      `gorm:"primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Gender    *string    `gorm:"column:gender"`
	HeightCM  *float64   `gorm:"column:height_cm"`
	WeightKG  *float64   `gorm:"column:weight_kg"`
	Age       *int       `gorm:"column:age"`
	BatchID   *int64     `gorm:"column:batch_id"`
	CreatedAt time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Person) TableName() string { return "persons" }

package experiment

import "time"

type Experiment struct {
	ID        int64     `gorm:"primaryKey"`
	BatchID   int64     `gorm:"column:batch_id;not null"`
	Content   string    `gorm:"column:content;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Experiment) TableName() string { return "experiments" }

// ExperimentMember joins an experiment to a participating person. An
// experiment always keeps at least one member row.
type ExperimentMember struct {
	ID           int64     `gorm:"primaryKey"`
	ExperimentID int64     `gorm:"column:experiment_id;not null;uniqueIndex:idx_experiment_person"`
	PersonID     int64     `gorm:"column:person_id;not null;uniqueIndex:idx_experiment_person"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (ExperimentMember) TableName() string { return "experiment_members" }

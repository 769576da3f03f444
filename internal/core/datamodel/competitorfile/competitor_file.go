package competitorfile

import "time"

type CompetitorFile struct {
	ID         int64     `gorm:"primaryKey"`
	PersonID   int64     `gorm:"column:person_id;not null"`
	BatchID    int64     `gorm:"column:batch_id;not null"`
	FileName   string    `gorm:"column:file_name;not null"`
	FilePath   string    `gorm:"column:file_path;not null"`
	UploadTime time.Time `gorm:"column:upload_time;default:now()"`
}

func (CompetitorFile) TableName() string { return "competitor_files" }

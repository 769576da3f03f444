package postgres

import (
	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal/activity"
	activityDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/activity"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.RepositoryAPI {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(entry *activityDatamodel.Activity) error {
	return r.db.Create(entry).Error
}

// List returns entries newest-first with the actor username resolved where
// the acting user still exists.
func (r *ActivityRepository) List(limit, offset int) ([]activity.ActivityResponse, error) {
	var entries []activity.ActivityResponse
	err := r.db.Model(&activityDatamodel.Activity{}).
		Select("activities.id, activities.activity_type, activities.description, activities.user_id, users.username AS username, activities.created_at").
		Joins("LEFT JOIN users ON users.id = activities.user_id").
		Order("activities.created_at DESC, activities.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	return entries, err
}

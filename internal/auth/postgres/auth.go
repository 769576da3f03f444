package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal/auth"
	userDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

// GetByUsername returns (nil, nil) when no user exists with that username.
func (r *Repository) GetByUsername(username string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateUser(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}

func (r *Repository) GetGrants(userID int64) ([]userDatamodel.PermissionGrant, error) {
	var grants []userDatamodel.PermissionGrant
	err := r.db.Where("user_id = ?", userID).Find(&grants).Error
	return grants, err
}

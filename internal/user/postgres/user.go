package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/auth"
	userDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/user"
	"github.com/liuqy/experiment-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(limit, offset int) ([]user.UserResponse, error) {
	var accounts []userDatamodel.User
	if err := r.db.Order("id ASC").Limit(limit).Offset(offset).Find(&accounts).Error; err != nil {
		return nil, err
	}

	rows := make([]user.UserResponse, 0, len(accounts))
	for _, account := range accounts {
		grants, err := r.grantsOf(account.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, user.UserResponse{
			ID:        account.ID,
			Username:  account.Username,
			Role:      account.Role,
			CreatedAt: account.CreatedAt,
			Grants:    grants,
		})
	}
	return rows, nil
}

func (r *UserRepository) GetByID(id int64) (*user.UserResponse, error) {
	var account userDatamodel.User
	if err := r.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	grants, err := r.grantsOf(account.ID)
	if err != nil {
		return nil, err
	}
	return &user.UserResponse{
		ID:        account.ID,
		Username:  account.Username,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
		Grants:    grants,
	}, nil
}

// ReplaceGrants swaps the whole grant set atomically.
func (r *UserRepository) ReplaceGrants(userID int64, grants []userDatamodel.PermissionGrant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&userDatamodel.PermissionGrant{}).Error; err != nil {
			return err
		}
		if len(grants) == 0 {
			return nil
		}
		return tx.Create(&grants).Error
	})
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).
			Delete(&userDatamodel.PermissionGrant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&userDatamodel.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepository) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("role = ?", userDatamodel.RoleAdmin).
		Count(&count).Error
	return count, err
}

func (r *UserRepository) grantsOf(userID int64) ([]auth.Grant, error) {
	var rows []userDatamodel.PermissionGrant
	if err := r.db.Where("user_id = ?", userID).Order("module ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	grants := make([]auth.Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, auth.Grant{
			Module:    auth.Module(row.Module),
			CanRead:   row.CanRead,
			CanWrite:  row.CanWrite,
			CanDelete: row.CanDelete,
		})
	}
	return grants, nil
}

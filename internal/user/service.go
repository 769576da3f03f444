package user

import (
	"fmt"
	"log/slog"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/activity"
	userDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	List(limit, offset int) ([]UserResponse, error)
	GetByID(id int64) (*UserResponse, error)
	ReplaceGrants(userID int64, grants []userDatamodel.PermissionGrant) error
	// Delete removes the user and their grant rows.
	Delete(id int64) error
	CountAdmins() (int64, error)
}

type Service struct {
	repo       RepositoryAPI
	activities activity.Recorder
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, activities activity.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		activities: activities,
		logger:     logger,
	}
}

func (s *Service) List(limit, offset int) ([]UserResponse, error) {
	users, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) Get(id int64) (*UserResponse, error) {
	return s.repo.GetByID(id)
}

// AssignPermissions replaces the target user's grant set in one shot.
func (s *Service) AssignPermissions(userID int64, dto PermissionsDTO, actorID int64) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(userID); err != nil {
		return nil, err
	}

	grants := make([]userDatamodel.PermissionGrant, 0, len(dto.Grants))
	for _, g := range dto.Grants {
		grants = append(grants, userDatamodel.PermissionGrant{
			UserID:    userID,
			Module:    g.Module,
			CanRead:   g.CanRead,
			CanWrite:  g.CanWrite,
			CanDelete: g.CanDelete,
		})
	}

	if err := s.repo.ReplaceGrants(userID, grants); err != nil {
		s.logger.Error("failed to replace grants", "error", err, "user_id", userID)
		return nil, err
	}

	s.activities.Record("permissions_assigned", fmt.Sprintf("assigned permissions to user %d", userID), &actorID)

	return s.repo.GetByID(userID)
}

// Delete refuses self-deletion and removing the last admin account.
func (s *Service) Delete(id int64, actorID int64) error {
	if id == actorID {
		return internal.NewInvalidOperationError("Cannot delete your own account", internal.ErrCodeInvalidOperation)
	}

	target, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if target.Role == userDatamodel.RoleAdmin {
		admins, err := s.repo.CountAdmins()
		if err != nil {
			return err
		}
		if admins <= 1 {
			return internal.NewInvalidOperationError("Cannot delete the last admin account", internal.ErrCodeInvalidOperation)
		}
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.activities.Record("user_deleted", fmt.Sprintf("deleted user %s", target.Username), &actorID)
	return nil
}

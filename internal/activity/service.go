package activity

import (
	"log/slog"

	activityDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/activity"
)

type RepositoryAPI interface {
	Create(entry *activityDatamodel.Activity) error
	List(limit, offset int) ([]ActivityResponse, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an audit entry. A failed append is logged and swallowed:
// the audit trail never rolls back or blocks the triggering operation.
func (s *Service) Record(activityType, description string, userID *int64) {
	entry := &activityDatamodel.Activity{
		ActivityType: activityType,
		Description:  description,
		UserID:       userID,
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to record activity",
			"error", err,
			"activity_type", activityType,
			"description", description)
	}
}

func (s *Service) List(limit, offset int) ([]ActivityResponse, error) {
	entries, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list activities", "error", err)
		return nil, err
	}
	return entries, nil
}

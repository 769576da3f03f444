package experiment

import (
	"fmt"
	"log/slog"

	"github.com/liuqy/experiment-management/internal/activity"
	experimentDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/experiment"
)

type RepositoryAPI interface {
	List(limit, offset int, batchID, personID *int64) ([]ExperimentResponse, error)
	GetByID(id int64) (*ExperimentResponse, error)
	Create(e *experimentDatamodel.Experiment, memberIDs []int64) error
	Update(e *experimentDatamodel.Experiment, memberIDs []int64) error
	Delete(id int64) error
	AddMember(experimentID, personID int64) error
	RemoveMember(experimentID, personID int64) error
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

func (s *Service) List(limit, offset int, batchID, personID *int64) ([]ExperimentResponse, error) {
	experiments, err := s.repo.List(limit, offset, batchID, personID)
	if err != nil {
		s.logger.Error("failed to list experiments", "error", err)
		return nil, err
	}
	return experiments, nil
}

func (s *Service) Get(id int64) (*ExperimentResponse, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto ExperimentDTO, actorID int64) (*ExperimentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e := &experimentDatamodel.Experiment{
		BatchID: dto.BatchID,
		Content: dto.Content,
	}

	if err := s.repo.Create(e, dto.MemberIDs); err != nil {
		s.logger.Error("failed to create experiment", "error", err, "batch_id", dto.BatchID)
		return nil, err
	}

	s.activities.Record("experiment_created", fmt.Sprintf("created experiment %d with %d members", e.ID, len(dto.MemberIDs)), &actorID)

	return s.repo.GetByID(e.ID)
}

func (s *Service) Update(id int64, dto ExperimentDTO, actorID int64) (*ExperimentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	e := &experimentDatamodel.Experiment{
		ID:      id,
		BatchID: dto.BatchID,
		Content: dto.Content,
	}

	if err := s.repo.Update(e, dto.MemberIDs); err != nil {
		s.logger.Error("failed to update experiment", "error", err, "experiment_id", id)
		return nil, err
	}

	s.activities.Record("experiment_updated", fmt.Sprintf("updated experiment %d", id), &actorID)

	return s.repo.GetByID(id)
}

func (s *Service) Delete(id int64, actorID int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete experiment", "error", err, "experiment_id", id)
		return err
	}

	s.activities.Record("experiment_deleted", fmt.Sprintf("deleted experiment %d", id), &actorID)
	return nil
}

func (s *Service) AddMember(experimentID int64, dto MemberDTO, actorID int64) (*ExperimentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(experimentID, dto.PersonID); err != nil {
		s.logger.Error("failed to add experiment member", "error", err, "experiment_id", experimentID, "person_id", dto.PersonID)
		return nil, err
	}

	s.activities.Record("experiment_member_added", fmt.Sprintf("added person %d to experiment %d", dto.PersonID, experimentID), &actorID)

	return s.repo.GetByID(experimentID)
}

func (s *Service) RemoveMember(experimentID, personID int64, actorID int64) (*ExperimentResponse, error) {
	if err := s.repo.RemoveMember(experimentID, personID); err != nil {
		s.logger.Error("failed to remove experiment member", "error", err, "experiment_id", experimentID, "person_id", personID)
		return nil, err
	}

	s.activities.Record("experiment_member_removed", fmt.Sprintf("removed person %d from experiment %d", personID, experimentID), &actorID)

	return s.repo.GetByID(experimentID)
}

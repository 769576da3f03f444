package batch

import (
	"fmt"
	"log/slog"

	"github.com/liuqy/experiment-management/internal/activity"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
)

type RepositoryAPI interface {
	List(limit, offset int) ([]*batchDatamodel.Batch, error)
	GetByID(id int64) (*batchDatamodel.Batch, error)
	Create(b *batchDatamodel.Batch) error
	Update(b *batchDatamodel.Batch) error
	Delete(id int64) error
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

func (s *Service) List(limit, offset int) ([]BatchResponse, error) {
	batches, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list batches", "error", err)
		return nil, err
	}

	responses := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		responses = append(responses, ToResponse(b))
	}
	return responses, nil
}

func (s *Service) Get(id int64) (*BatchResponse, error) {
	b, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(b)
	return &resp, nil
}

func (s *Service) Create(dto BatchDTO, actorID int64) (*BatchResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	b := &batchDatamodel.Batch{
		BatchNumber: dto.BatchNumber,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
	}

	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to create batch", "error", err, "batch_number", dto.BatchNumber)
		return nil, err
	}

	s.logger.Info("batch created", "batch_id", b.ID, "batch_number", b.BatchNumber)
	s.activities.Record("batch_created", fmt.Sprintf("created batch %s", b.BatchNumber), &actorID)

	resp := ToResponse(b)
	return &resp, nil
}

func (s *Service) Update(id int64, dto BatchDTO, actorID int64) (*BatchResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	existing.BatchNumber = dto.BatchNumber
	existing.StartTime = dto.StartTime
	existing.EndTime = dto.EndTime

	if err := s.repo.Update(existing); err != nil {
		s.logger.Error("failed to update batch", "error", err, "batch_id", id)
		return nil, err
	}

	s.activities.Record("batch_updated", fmt.Sprintf("updated batch %s", existing.BatchNumber), &actorID)

	resp := ToResponse(existing)
	return &resp, nil
}

func (s *Service) Delete(id int64, actorID int64) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete batch", "error", err, "batch_id", id)
		return err
	}

	s.activities.Record("batch_deleted", fmt.Sprintf("deleted batch %s", existing.BatchNumber), &actorID)
	return nil
}

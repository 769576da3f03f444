package person

import (
	"fmt"
	"log/slog"

	"github.com/liuqy/experiment-management/internal/activity"
	personDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/person"
)

type RepositoryAPI interface {
	List(limit, offset int, batchID *int64) ([]PersonResponse, error)
	GetByID(id int64) (*PersonResponse, error)
	Create(p *personDatamodel.Person) error
	Update(p *personDatamodel.Person) error
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

func (s *Service) List(limit, offset int, batchID *int64) ([]PersonResponse, error) {
	persons, err := s.repo.List(limit, offset, batchID)
	if err != nil {
		s.logger.Error("failed to list persons", "error", err)
		return nil, err
	}
	return persons, nil
}

func (s *Service) Get(id int64) (*PersonResponse, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto PersonDTO, actorID int64) (*PersonResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := &personDatamodel.Person{
		Name:     dto.Name,
		Gender:   dto.Gender,
		HeightCM: dto.HeightCM,
		WeightKG: dto.WeightKG,
		Age:      dto.Age,
		BatchID:  dto.BatchID,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create person", "error", err, "person_name", dto.Name)
		return nil, err
	}

	s.activities.Record("person_created", fmt.Sprintf("created person %s", p.Name), &actorID)

	return s.repo.GetByID(p.ID)
}

func (s *Service) Update(id int64, dto PersonDTO, actorID int64) (*PersonResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	p := &personDatamodel.Person{
		ID:       id,
		Name:     dto.Name,
		Gender:   dto.Gender,
		HeightCM: dto.HeightCM,
		WeightKG: dto.WeightKG,
		Age:      dto.Age,
		BatchID:  dto.BatchID,
	}

	if err := s.repo.Update(p); err != nil {
		s.logger.Error("failed to update person", "error", err, "person_id", id)
		return nil, err
	}

	s.activities.Record("person_updated", fmt.Sprintf("updated person %s", p.Name), &actorID)

	return s.repo.GetByID(id)
}

func (s *Service) Delete(id int64, actorID int64) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete person", "error", err, "person_id", id)
		return err
	}

	s.activities.Record("person_deleted", fmt.Sprintf("deleted person %s", existing.Name), &actorID)
	return nil
}

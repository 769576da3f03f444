package sensor

import (
	"fmt"
	"log/slog"

	"github.com/liuqy/experiment-management/internal/activity"
	sensorDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/sensor"
)

type RepositoryAPI interface {
	List(limit, offset int, batchID, personID *int64) ([]SensorResponse, error)
	GetByID(id int64) (*SensorResponse, error)
	Create(sn *sensorDatamodel.Sensor) error
	Update(sn *sensorDatamodel.Sensor) error
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

func (s *Service) List(limit, offset int, batchID, personID *int64) ([]SensorResponse, error) {
	sensors, err := s.repo.List(limit, offset, batchID, personID)
	if err != nil {
		s.logger.Error("failed to list sensors", "error", err)
		return nil, err
	}
	return sensors, nil
}

func (s *Service) Get(id int64) (*SensorResponse, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto SensorDTO, actorID int64) (*SensorResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	sn := &sensorDatamodel.Sensor{
		Name:      dto.Name,
		PersonID:  dto.PersonID,
		BatchID:   dto.BatchID,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		EndReason: dto.EndReason,
	}

	if err := s.repo.Create(sn); err != nil {
		s.logger.Error("failed to create sensor", "error", err, "sensor_name", dto.Name)
		return nil, err
	}

	s.activities.Record("sensor_created", fmt.Sprintf("created sensor %s", sn.Name), &actorID)

	return s.repo.GetByID(sn.ID)
}

func (s *Service) Update(id int64, dto SensorDTO, actorID int64) (*SensorResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	sn := &sensorDatamodel.Sensor{
		ID:        id,
		Name:      dto.Name,
		PersonID:  dto.PersonID,
		BatchID:   dto.BatchID,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		EndReason: dto.EndReason,
	}

	if err := s.repo.Update(sn); err != nil {
		s.logger.Error("failed to update sensor", "error", err, "sensor_id", id)
		return nil, err
	}

	s.activities.Record("sensor_updated", fmt.Sprintf("updated sensor %s", sn.Name), &actorID)

	return s.repo.GetByID(id)
}

func (s *Service) Delete(id int64, actorID int64) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete sensor", "error", err, "sensor_id", id)
		return err
	}

	s.activities.Record("sensor_deleted", fmt.Sprintf("deleted sensor %s", existing.Name), &actorID)
	return nil
}

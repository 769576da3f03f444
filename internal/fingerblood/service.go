package fingerblood

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/activity"
	fingerbloodDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/fingerblood"
)

type RepositoryAPI interface {
	List(limit, offset int, batchID, personID *int64) ([]RecordResponse, error)
	ListAll() ([]RecordResponse, error)
	GetByID(id int64) (*RecordResponse, error)
	Create(rec *fingerbloodDatamodel.FingerBloodRecord) error
	Update(rec *fingerbloodDatamodel.FingerBloodRecord) error
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

func (s *Service) List(limit, offset int, batchID, personID *int64) ([]RecordResponse, error) {
	records, err := s.repo.List(limit, offset, batchID, personID)
	if err != nil {
		s.logger.Error("failed to list finger blood records", "error", err)
		return nil, err
	}
	return records, nil
}

func (s *Service) Get(id int64) (*RecordResponse, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto RecordDTO, actorID int64) (*RecordResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec := &fingerbloodDatamodel.FingerBloodRecord{
		PersonID:          dto.PersonID,
		BatchID:           dto.BatchID,
		CollectionTime:    dto.CollectionTime,
		BloodGlucoseValue: dto.BloodGlucoseValue,
	}

	if err := s.repo.Create(rec); err != nil {
		s.logger.Error("failed to create finger blood record", "error", err, "person_id", dto.PersonID)
		return nil, err
	}

	s.activities.Record("finger_blood_created", fmt.Sprintf("created finger blood record %d", rec.ID), &actorID)

	return s.repo.GetByID(rec.ID)
}

func (s *Service) Update(id int64, dto RecordDTO, actorID int64) (*RecordResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	rec := &fingerbloodDatamodel.FingerBloodRecord{
		ID:                id,
		PersonID:          dto.PersonID,
		BatchID:           dto.BatchID,
		CollectionTime:    dto.CollectionTime,
		BloodGlucoseValue: dto.BloodGlucoseValue,
	}

	if err := s.repo.Update(rec); err != nil {
		s.logger.Error("failed to update finger blood record", "error", err, "record_id", id)
		return nil, err
	}

	s.activities.Record("finger_blood_updated", fmt.Sprintf("updated finger blood record %d", id), &actorID)

	return s.repo.GetByID(id)
}

func (s *Service) Delete(id int64, actorID int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete finger blood record", "error", err, "record_id", id)
		return err
	}

	s.activities.Record("finger_blood_deleted", fmt.Sprintf("deleted finger blood record %d", id), &actorID)
	return nil
}

// Export produces an xlsx listing every record, newest first.
func (s *Service) Export(actorID int64) ([]byte, error) {
	records, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Finger Blood Records"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Person Name", "Batch Number", "Collection Time", "Blood Glucose Value"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.ID,
			rec.PersonName,
			rec.BatchNumber,
			rec.CollectionTime.Format("2006-01-02 15:04:05"),
			rec.BloodGlucoseValue,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, internal.NewIOError("failed to build export workbook", err)
	}

	s.activities.Record("finger_blood_exported", fmt.Sprintf("exported %d finger blood records", len(records)), &actorID)

	return buf.Bytes(), nil
}

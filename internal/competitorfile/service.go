package competitorfile

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/activity"
	competitorfileDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/competitorfile"
)

type RepositoryAPI interface {
	List(limit, offset int, batchID, personID *int64) ([]FileResponse, error)
	ListAll() ([]FileResponse, error)
	GetByID(id int64) (*FileResponse, error)
	// FindByOwnerAndName returns (nil, nil) when no row matches.
	FindByOwnerAndName(batchID, personID int64, fileName string) (*competitorfileDatamodel.CompetitorFile, error)
	Create(f *competitorfileDatamodel.CompetitorFile) error
	Update(f *competitorfileDatamodel.CompetitorFile) error
	Delete(id int64) error
	CheckOwnerRefs(batchID, personID int64) error
}

type Service struct {
	repo       RepositoryAPI
	storage    *Storage
	activities activity.Recorder
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, storage *Storage, activities activity.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		storage:    storage,
		activities: activities,
		logger:     logger,
	}
}

func (s *Service) List(limit, offset int, batchID, personID *int64) ([]FileResponse, error) {
	files, err := s.repo.List(limit, offset, batchID, personID)
	if err != nil {
		s.logger.Error("failed to list competitor files", "error", err)
		return nil, err
	}
	return files, nil
}

func (s *Service) Get(id int64) (*FileResponse, error) {
	return s.repo.GetByID(id)
}

// Upload stores the file content and its row. A re-upload with the same
// owner and file name overwrites the content and reuses the existing row.
func (s *Service) Upload(batchID, personID int64, fileName string, src io.Reader, actorID int64) (*FileResponse, error) {
	if err := validateFileName(fileName, "file"); err != nil {
		return nil, err
	}
	if err := s.repo.CheckOwnerRefs(batchID, personID); err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(batchID, personID, fileName, src)
	if err != nil {
		s.logger.Error("failed to store uploaded file", "error", err, "file_name", fileName)
		return nil, err
	}

	existing, err := s.repo.FindByOwnerAndName(batchID, personID, fileName)
	if err != nil {
		return nil, err
	}

	var fileID int64
	if existing != nil {
		existing.FilePath = relPath
		existing.UploadTime = time.Now()
		if err := s.repo.Update(existing); err != nil {
			return nil, err
		}
		fileID = existing.ID
	} else {
		row := &competitorfileDatamodel.CompetitorFile{
			PersonID:   personID,
			BatchID:    batchID,
			FileName:   fileName,
			FilePath:   relPath,
			UploadTime: time.Now(),
		}
		if err := s.repo.Create(row); err != nil {
			return nil, err
		}
		fileID = row.ID
	}

	s.activities.Record("competitor_file_uploaded", fmt.Sprintf("uploaded competitor file %s", fileName), &actorID)

	return s.repo.GetByID(fileID)
}

// Rename moves the file on disk first, then updates the row. A failed
// filesystem rename leaves the row untouched.
func (s *Service) Rename(id int64, dto RenameDTO, actorID int64) (*FileResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if current.FileName == dto.NewName {
		return current, nil
	}

	dup, err := s.repo.FindByOwnerAndName(current.BatchID, current.PersonID, dto.NewName)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, internal.NewConflictError("A file with that name already exists", internal.ErrCodeDuplicateFileName)
	}

	newPath, err := s.storage.Rename(current.FilePath, dto.NewName)
	if err != nil {
		s.logger.Error("failed to rename file on disk", "error", err, "file_id", id)
		return nil, err
	}

	row := &competitorfileDatamodel.CompetitorFile{
		ID:         current.ID,
		PersonID:   current.PersonID,
		BatchID:    current.BatchID,
		FileName:   dto.NewName,
		FilePath:   newPath,
		UploadTime: current.UploadTime,
	}
	if err := s.repo.Update(row); err != nil {
		return nil, err
	}

	s.activities.Record("competitor_file_renamed", fmt.Sprintf("renamed competitor file %s to %s", current.FileName, dto.NewName), &actorID)

	return s.repo.GetByID(id)
}

// Delete removes the file then the row. A file already gone from disk is
// tolerated; a filesystem error aborts before the row is touched.
func (s *Service) Delete(id int64, actorID int64) error {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.storage.Remove(current.FilePath); err != nil {
		s.logger.Error("failed to remove file from disk", "error", err, "file_id", id)
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.activities.Record("competitor_file_deleted", fmt.Sprintf("deleted competitor file %s", current.FileName), &actorID)
	return nil
}

// Download returns the stored content along with its original file name.
func (s *Service) Download(id int64) (string, io.ReadCloser, error) {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return "", nil, err
	}

	reader, err := s.storage.Open(current.FilePath)
	if err != nil {
		return "", nil, err
	}
	return current.FileName, reader, nil
}

// Export produces an xlsx listing every competitor file with a
// human-readable size. The export itself is recorded as an activity.
func (s *Service) Export(actorID int64) ([]byte, error) {
	files, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Competitor Files"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "File Name", "Batch Number", "Person Name", "File Size", "File Path"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, file := range files {
		row := i + 2
		values := []interface{}{
			file.ID,
			file.FileName,
			file.BatchNumber,
			file.PersonName,
			humanSize(s.storage.Size(file.FilePath)),
			file.FilePath,
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

	s.activities.Record("competitor_files_exported", fmt.Sprintf("exported %d competitor files", len(files)), &actorID)

	return buf.Bytes(), nil
}

func humanSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f GB", size)
}

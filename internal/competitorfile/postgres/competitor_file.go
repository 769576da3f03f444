package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/competitorfile"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
	competitorfileDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/competitorfile"
	personDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/person"
)

type CompetitorFileRepository struct {
	db *gorm.DB
}

func NewCompetitorFileRepository(db *gorm.DB) competitorfile.RepositoryAPI {
	return &CompetitorFileRepository{db: db}
}

const fileSelect = "competitor_files.id, competitor_files.person_id, persons.name AS person_name, competitor_files.batch_id, batches.batch_number AS batch_number, competitor_files.file_name, competitor_files.file_path, competitor_files.upload_time"

func (r *CompetitorFileRepository) baseQuery() *gorm.DB {
	return r.db.Model(&competitorfileDatamodel.CompetitorFile{}).
		Select(fileSelect).
		Joins("LEFT JOIN persons ON persons.id = competitor_files.person_id").
		Joins("LEFT JOIN batches ON batches.id = competitor_files.batch_id")
}

func (r *CompetitorFileRepository) List(limit, offset int, batchID, personID *int64) ([]competitorfile.FileResponse, error) {
	q := r.baseQuery()
	if batchID != nil {
		q = q.Where("competitor_files.batch_id = ?", *batchID)
	}
	if personID != nil {
		q = q.Where("competitor_files.person_id = ?", *personID)
	}

	var rows []competitorfile.FileResponse
	err := q.Order("competitor_files.upload_time DESC, competitor_files.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *CompetitorFileRepository) ListAll() ([]competitorfile.FileResponse, error) {
	var rows []competitorfile.FileResponse
	err := r.baseQuery().
		Order("competitor_files.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *CompetitorFileRepository) GetByID(id int64) (*competitorfile.FileResponse, error) {
	var row competitorfile.FileResponse
	result := r.baseQuery().
		Where("competitor_files.id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrFileNotFound
	}
	return &row, nil
}

func (r *CompetitorFileRepository) FindByOwnerAndName(batchID, personID int64, fileName string) (*competitorfileDatamodel.CompetitorFile, error) {
	var row competitorfileDatamodel.CompetitorFile
	err := r.db.Where("batch_id = ? AND person_id = ? AND file_name = ?", batchID, personID, fileName).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *CompetitorFileRepository) Create(f *competitorfileDatamodel.CompetitorFile) error {
	return r.db.Create(f).Error
}

func (r *CompetitorFileRepository) Update(f *competitorfileDatamodel.CompetitorFile) error {
	return r.db.Model(&competitorfileDatamodel.CompetitorFile{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"file_name":   f.FileName,
			"file_path":   f.FilePath,
			"upload_time": f.UploadTime,
		}).Error
}

func (r *CompetitorFileRepository) Delete(id int64) error {
	result := r.db.Delete(&competitorfileDatamodel.CompetitorFile{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrFileNotFound
	}
	return nil
}

// CheckOwnerRefs validates the owning batch and person exist.
func (r *CompetitorFileRepository) CheckOwnerRefs(batchID, personID int64) error {
	var count int64
	if err := r.db.Model(&batchDatamodel.Batch{}).Where("id = ?", batchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.NewInvalidReferenceError("Referenced batch does not exist")
	}

	if err := r.db.Model(&personDatamodel.Person{}).Where("id = ?", personID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.NewInvalidReferenceError("Referenced person does not exist")
	}
	return nil
}

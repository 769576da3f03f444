package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/batch"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
	competitorfileDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/competitorfile"
	experimentDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/experiment"
	fingerbloodDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/fingerblood"
	sensorDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/sensor"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) batch.RepositoryAPI {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) List(limit, offset int) ([]*batchDatamodel.Batch, error) {
	var batches []*batchDatamodel.Batch
	err := r.db.Order("start_time DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&batches).Error
	return batches, err
}

func (r *BatchRepository) GetByID(id int64) (*batchDatamodel.Batch, error) {
	var b batchDatamodel.Batch
	err := r.db.Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBatchNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create checks batch_number uniqueness inside the insert transaction. The
// unique index remains the backstop for concurrent creates.
func (r *BatchRepository) Create(b *batchDatamodel.Batch) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&batchDatamodel.Batch{}).
			Where("batch_number = ?", b.BatchNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.NewConflictError("Batch number already exists", internal.ErrCodeDuplicateBatchNumber)
		}
		return tx.Create(b).Error
	})
}

func (r *BatchRepository) Update(b *batchDatamodel.Batch) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&batchDatamodel.Batch{}).
			Where("batch_number = ? AND id <> ?", b.BatchNumber, b.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.NewConflictError("Batch number already exists", internal.ErrCodeDuplicateBatchNumber)
		}
		// column map so a cleared end_time is persisted as NULL
		return tx.Model(&batchDatamodel.Batch{}).
			Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"batch_number": b.BatchNumber,
				"start_time":   b.StartTime,
				"end_time":     b.EndTime,
			}).Error
	})
}

// Delete refuses while any experiment, competitor file, finger blood record
// or sensor still references the batch.
func (r *BatchRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var b batchDatamodel.Batch
		if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrBatchNotFound
			}
			return err
		}

		dependents := []interface{}{
			&experimentDatamodel.Experiment{},
			&competitorfileDatamodel.CompetitorFile{},
			&fingerbloodDatamodel.FingerBloodRecord{},
			&sensorDatamodel.Sensor{},
		}
		for _, model := range dependents {
			var count int64
			if err := tx.Model(model).Where("batch_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return internal.NewConflictError("Batch has dependent records and cannot be deleted", internal.ErrCodeDependentRecords)
			}
		}

		return tx.Delete(&batchDatamodel.Batch{}, id).Error
	})
}

package postgres

import (
	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
	fingerbloodDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/fingerblood"
	personDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/person"
	"github.com/liuqy/experiment-management/internal/fingerblood"
)

type FingerBloodRepository struct {
	db *gorm.DB
}

func NewFingerBloodRepository(db *gorm.DB) fingerblood.RepositoryAPI {
	return &FingerBloodRepository{db: db}
}

const recordSelect = "finger_blood_records.id, finger_blood_records.person_id, persons.name AS person_name, finger_blood_records.batch_id, batches.batch_number AS batch_number, finger_blood_records.collection_time, finger_blood_records.blood_glucose_value"

func (r *FingerBloodRepository) baseQuery() *gorm.DB {
	return r.db.Model(&fingerbloodDatamodel.FingerBloodRecord{}).
		Select(recordSelect).
		Joins("LEFT JOIN persons ON persons.id = finger_blood_records.person_id").
		Joins("LEFT JOIN batches ON batches.id = finger_blood_records.batch_id")
}

func (r *FingerBloodRepository) List(limit, offset int, batchID, personID *int64) ([]fingerblood.RecordResponse, error) {
	q := r.baseQuery()
	if batchID != nil {
		q = q.Where("finger_blood_records.batch_id = ?", *batchID)
	}
	if personID != nil {
		q = q.Where("finger_blood_records.person_id = ?", *personID)
	}

	var rows []fingerblood.RecordResponse
	err := q.Order("finger_blood_records.collection_time DESC, finger_blood_records.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *FingerBloodRepository) ListAll() ([]fingerblood.RecordResponse, error) {
	var rows []fingerblood.RecordResponse
	err := r.baseQuery().
		Order("finger_blood_records.collection_time DESC, finger_blood_records.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *FingerBloodRepository) GetByID(id int64) (*fingerblood.RecordResponse, error) {
	var row fingerblood.RecordResponse
	result := r.baseQuery().
		Where("finger_blood_records.id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrRecordNotFound
	}
	return &row, nil
}

func (r *FingerBloodRepository) Create(rec *fingerbloodDatamodel.FingerBloodRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkOwnerRefs(tx, rec.BatchID, rec.PersonID); err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

func (r *FingerBloodRepository) Update(rec *fingerbloodDatamodel.FingerBloodRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkOwnerRefs(tx, rec.BatchID, rec.PersonID); err != nil {
			return err
		}
		return tx.Model(&fingerbloodDatamodel.FingerBloodRecord{}).
			Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"person_id":           rec.PersonID,
				"batch_id":            rec.BatchID,
				"collection_time":     rec.CollectionTime,
				"blood_glucose_value": rec.BloodGlucoseValue,
			}).Error
	})
}

func (r *FingerBloodRepository) Delete(id int64) error {
	result := r.db.Delete(&fingerbloodDatamodel.FingerBloodRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrRecordNotFound
	}
	return nil
}

func checkOwnerRefs(tx *gorm.DB, batchID, personID int64) error {
	var count int64
	if err := tx.Model(&batchDatamodel.Batch{}).Where("id = ?", batchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.NewInvalidReferenceError("Referenced batch does not exist")
	}

	if err := tx.Model(&personDatamodel.Person{}).Where("id = ?", personID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.NewInvalidReferenceError("Referenced person does not exist")
	}
	return nil
}

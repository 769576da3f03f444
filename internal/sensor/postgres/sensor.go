package postgres

import (
	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
	personDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/person"
	sensorDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/sensor"
	"github.com/liuqy/experiment-management/internal/sensor"
)

type SensorRepository struct {
	db *gorm.DB
}

func NewSensorRepository(db *gorm.DB) sensor.RepositoryAPI {
	return &SensorRepository{db: db}
}

const sensorSelect = "sensors.id, sensors.name, sensors.person_id, persons.name AS person_name, sensors.batch_id, batches.batch_number AS batch_number, sensors.start_time, sensors.end_time, sensors.end_reason"

func (r *SensorRepository) baseQuery() *gorm.DB {
	return r.db.Model(&sensorDatamodel.Sensor{}).
		Select(sensorSelect).
		Joins("LEFT JOIN persons ON persons.id = sensors.person_id").
		Joins("LEFT JOIN batches ON batches.id = sensors.batch_id")
}

func (r *SensorRepository) List(limit, offset int, batchID, personID *int64) ([]sensor.SensorResponse, error) {
	q := r.baseQuery()
	if batchID != nil {
		q = q.Where("sensors.batch_id = ?", *batchID)
	}
	if personID != nil {
		q = q.Where("sensors.person_id = ?", *personID)
	}

	var rows []sensor.SensorResponse
	err := q.Order("sensors.start_time DESC, sensors.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *SensorRepository) GetByID(id int64) (*sensor.SensorResponse, error) {
	var row sensor.SensorResponse
	result := r.baseQuery().
		Where("sensors.id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrSensorNotFound
	}
	return &row, nil
}

func (r *SensorRepository) Create(sn *sensorDatamodel.Sensor) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkOwnerRefs(tx, sn.BatchID, sn.PersonID); err != nil {
			return err
		}
		return tx.Create(sn).Error
	})
}

// Update writes a column map so a cleared end_time/end_reason pair is
// persisted as NULL.
func (r *SensorRepository) Update(sn *sensorDatamodel.Sensor) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkOwnerRefs(tx, sn.BatchID, sn.PersonID); err != nil {
			return err
		}
		return tx.Model(&sensorDatamodel.Sensor{}).
			Where("id = ?", sn.ID).
			Updates(map[string]interface{}{
				"name":       sn.Name,
				"person_id":  sn.PersonID,
				"batch_id":   sn.BatchID,
				"start_time": sn.StartTime,
				"end_time":   sn.EndTime,
				"end_reason": sn.EndReason,
			}).Error
	})
}

func (r *SensorRepository) Delete(id int64) error {
	result := r.db.Delete(&sensorDatamodel.Sensor{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrSensorNotFound
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

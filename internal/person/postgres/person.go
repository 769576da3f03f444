package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
	competitorfileDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/competitorfile"
	experimentDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/experiment"
	fingerbloodDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/fingerblood"
	personDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/person"
	sensorDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/sensor"
	"github.com/liuqy/experiment-management/internal/person"
)

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) person.RepositoryAPI {
	return &PersonRepository{db: db}
}

const personSelect = "persons.id, persons.name, persons.gender, persons.height_cm, persons.weight_kg, persons.age, persons.batch_id, batches.batch_number AS batch_number"

func (r *PersonRepository) List(limit, offset int, batchID *int64) ([]person.PersonResponse, error) {
	q := r.db.Model(&personDatamodel.Person{}).
		Select(personSelect).
		Joins("LEFT JOIN batches ON batches.id = persons.batch_id")

	if batchID != nil {
		q = q.Where("persons.batch_id = ?", *batchID)
	}

	var rows []person.PersonResponse
	err := q.Order("persons.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *PersonRepository) GetByID(id int64) (*person.PersonResponse, error) {
	var row person.PersonResponse
	result := r.db.Model(&personDatamodel.Person{}).
		Select(personSelect).
		Joins("LEFT JOIN batches ON batches.id = persons.batch_id").
		Where("persons.id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrPersonNotFound
	}
	return &row, nil
}

// Create validates the optional owning batch before insert.
func (r *PersonRepository) Create(p *personDatamodel.Person) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkBatchRef(tx, p.BatchID); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

func (r *PersonRepository) Update(p *personDatamodel.Person) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkBatchRef(tx, p.BatchID); err != nil {
			return err
		}
		return tx.Model(&personDatamodel.Person{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"name":      p.Name,
				"gender":    p.Gender,
				"height_cm": p.HeightCM,
				"weight_kg": p.WeightKG,
				"age":       p.Age,
				"batch_id":  p.BatchID,
			}).Error
	})
}

func (r *PersonRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var p personDatamodel.Person
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrPersonNotFound
			}
			return err
		}

		dependents := []interface{}{
			&experimentDatamodel.ExperimentMember{},
			&competitorfileDatamodel.CompetitorFile{},
			&fingerbloodDatamodel.FingerBloodRecord{},
			&sensorDatamodel.Sensor{},
		}
		for _, model := range dependents {
			var count int64
			if err := tx.Model(model).Where("person_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return internal.NewConflictError("Person has dependent records and cannot be deleted", internal.ErrCodeDependentRecords)
			}
		}

		return tx.Delete(&personDatamodel.Person{}, id).Error
	})
}

func checkBatchRef(tx *gorm.DB, batchID *int64) error {
	if batchID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&batchDatamodel.Batch{}).Where("id = ?", *batchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.NewInvalidReferenceError("Referenced batch does not exist")
	}
	return nil
}

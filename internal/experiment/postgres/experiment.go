package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/liuqy/experiment-management/internal"
	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
	experimentDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/experiment"
	personDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/person"
	"github.com/liuqy/experiment-management/internal/experiment"
)

type ExperimentRepository struct {
	db *gorm.DB
}

func NewExperimentRepository(db *gorm.DB) experiment.RepositoryAPI {
	return &ExperimentRepository{db: db}
}

const experimentSelect = "experiments.id, experiments.batch_id, batches.batch_number AS batch_number, experiments.content, experiments.created_at"

func (r *ExperimentRepository) List(limit, offset int, batchID, personID *int64) ([]experiment.ExperimentResponse, error) {
	q := r.db.Model(&experimentDatamodel.Experiment{}).
		Select(experimentSelect).
		Joins("LEFT JOIN batches ON batches.id = experiments.batch_id")

	if batchID != nil {
		q = q.Where("experiments.batch_id = ?", *batchID)
	}
	if personID != nil {
		q = q.Joins("JOIN experiment_members ON experiment_members.experiment_id = experiments.id").
			Where("experiment_members.person_id = ?", *personID)
	}

	var rows []experiment.ExperimentResponse
	err := q.Order("experiments.created_at DESC, experiments.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		members, err := r.membersOf(r.db, rows[i].ID)
		if err != nil {
			return nil, err
		}
		rows[i].Members = members
	}
	return rows, nil
}

func (r *ExperimentRepository) GetByID(id int64) (*experiment.ExperimentResponse, error) {
	var row experiment.ExperimentResponse
	result := r.db.Model(&experimentDatamodel.Experiment{}).
		Select(experimentSelect).
		Joins("LEFT JOIN batches ON batches.id = experiments.batch_id").
		Where("experiments.id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrExperimentNotFound
	}

	members, err := r.membersOf(r.db, id)
	if err != nil {
		return nil, err
	}
	row.Members = members
	return &row, nil
}

// Create inserts the experiment and its full member set in one
// transaction. Every referenced batch and person must exist.
func (r *ExperimentRepository) Create(e *experimentDatamodel.Experiment, memberIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkBatchRef(tx, e.BatchID); err != nil {
			return err
		}
		if err := checkPersonRefs(tx, memberIDs); err != nil {
			return err
		}
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		return insertMembers(tx, e.ID, memberIDs)
	})
}

// Update replaces the experiment fields and the whole member set.
func (r *ExperimentRepository) Update(e *experimentDatamodel.Experiment, memberIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkBatchRef(tx, e.BatchID); err != nil {
			return err
		}
		if err := checkPersonRefs(tx, memberIDs); err != nil {
			return err
		}
		if err := tx.Model(&experimentDatamodel.Experiment{}).
			Where("id = ?", e.ID).
			Updates(map[string]interface{}{
				"batch_id": e.BatchID,
				"content":  e.Content,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("experiment_id = ?", e.ID).
			Delete(&experimentDatamodel.ExperimentMember{}).Error; err != nil {
			return err
		}
		return insertMembers(tx, e.ID, memberIDs)
	})
}

func (r *ExperimentRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var e experimentDatamodel.Experiment
		if err := tx.Where("id = ?", id).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrExperimentNotFound
			}
			return err
		}

		if err := tx.Where("experiment_id = ?", id).
			Delete(&experimentDatamodel.ExperimentMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&experimentDatamodel.Experiment{}, id).Error
	})
}

func (r *ExperimentRepository) AddMember(experimentID, personID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var e experimentDatamodel.Experiment
		if err := tx.Where("id = ?", experimentID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrExperimentNotFound
			}
			return err
		}
		if err := checkPersonRefs(tx, []int64{personID}); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&experimentDatamodel.ExperimentMember{}).
			Where("experiment_id = ? AND person_id = ?", experimentID, personID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.NewConflictError("Person is already a member of this experiment", internal.ErrCodeDuplicateMember)
		}

		return tx.Create(&experimentDatamodel.ExperimentMember{
			ExperimentID: experimentID,
			PersonID:     personID,
		}).Error
	})
}

// RemoveMember refuses to drop the last remaining member.
func (r *ExperimentRepository) RemoveMember(experimentID, personID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var e experimentDatamodel.Experiment
		if err := tx.Where("id = ?", experimentID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrExperimentNotFound
			}
			return err
		}

		var member experimentDatamodel.ExperimentMember
		if err := tx.Where("experiment_id = ? AND person_id = ?", experimentID, personID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrPersonNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&experimentDatamodel.ExperimentMember{}).
			Where("experiment_id = ?", experimentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return internal.NewInvalidOperationError("Cannot remove the last member of an experiment", internal.ErrCodeLastMember)
		}

		return tx.Delete(&experimentDatamodel.ExperimentMember{}, member.ID).Error
	})
}

func (r *ExperimentRepository) membersOf(db *gorm.DB, experimentID int64) ([]experiment.Member, error) {
	var members []experiment.Member
	err := db.Model(&experimentDatamodel.ExperimentMember{}).
		Select("experiment_members.person_id, persons.name AS person_name").
		Joins("LEFT JOIN persons ON persons.id = experiment_members.person_id").
		Where("experiment_members.experiment_id = ?", experimentID).
		Order("experiment_members.id ASC").
		Scan(&members).Error
	return members, err
}

func insertMembers(tx *gorm.DB, experimentID int64, memberIDs []int64) error {
	members := make([]experimentDatamodel.ExperimentMember, 0, len(memberIDs))
	for _, personID := range memberIDs {
		members = append(members, experimentDatamodel.ExperimentMember{
			ExperimentID: experimentID,
			PersonID:     personID,
		})
	}
	return tx.Create(&members).Error
}

func checkBatchRef(tx *gorm.DB, batchID int64) error {
	var count int64
	if err := tx.Model(&batchDatamodel.Batch{}).Where("id = ?", batchID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.NewInvalidReferenceError("Referenced batch does not exist")
	}
	return nil
}

func checkPersonRefs(tx *gorm.DB, personIDs []int64) error {
	for _, id := range personIDs {
		var count int64
		if err := tx.Model(&personDatamodel.Person{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return internal.NewInvalidReferenceError(fmt.Sprintf("Referenced person %d does not exist", id))
		}
	}
	return nil
}

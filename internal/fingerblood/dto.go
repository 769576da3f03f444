package fingerblood

import (
	"math"
	"time"

	"github.com/liuqy/experiment-management/internal"
)

// RecordDTO carries create and update payloads. Updates replace every field.
type RecordDTO struct {
	PersonID          int64     `json:"person_id"`
	BatchID           int64     `json:"batch_id"`
	CollectionTime    time.Time `json:"collection_time"`
	BloodGlucoseValue float64   `json:"blood_glucose_value"`
}

func (d RecordDTO) Validate() *internal.AppError {
	if d.PersonID == 0 {
		return internal.NewValidationFieldError("person_id", "person_id is required", internal.ErrCodeValidationFailed)
	}
	if d.BatchID == 0 {
		return internal.NewValidationFieldError("batch_id", "batch_id is required", internal.ErrCodeValidationFailed)
	}
	if d.CollectionTime.IsZero() {
		return internal.NewValidationFieldError("collection_time", "collection_time is required", internal.ErrCodeValidationFailed)
	}
	if d.BloodGlucoseValue <= 0 {
		return internal.NewValidationFieldError("blood_glucose_value", "blood glucose value must be positive", internal.ErrCodeValidationFailed)
	}
	if d.BloodGlucoseValue > 999.99 {
		return internal.NewValidationFieldError("blood_glucose_value", "blood glucose value is out of range", internal.ErrCodeValidationFailed)
	}
	if math.Round(d.BloodGlucoseValue*100)/100 != d.BloodGlucoseValue {
		return internal.NewValidationFieldError("blood_glucose_value", "blood glucose value allows at most 2 decimal places", internal.ErrCodeValidationFailed)
	}
	return nil
}

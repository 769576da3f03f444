package batch

import (
	"time"

	"github.com/liuqy/experiment-management/internal"
)

// BatchDTO carries create and update payloads. Updates are full-record
// replaces; omitting end_time clears it.
type BatchDTO struct {
	BatchNumber string     `json:"batch_number"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

func (d BatchDTO) Validate() *internal.AppError {
	if d.BatchNumber == "" {
		return internal.NewValidationFieldError("batch_number", "batch_number is required", internal.ErrCodeValidationFailed)
	}
	if len(d.BatchNumber) > 50 {
		return internal.NewValidationFieldError("batch_number", "batch_number must not exceed 50 characters", internal.ErrCodeValidationFailed)
	}
	if d.StartTime.IsZero() {
		return internal.NewValidationFieldError("start_time", "start_time is required", internal.ErrCodeValidationFailed)
	}
	if d.EndTime != nil && d.EndTime.Before(d.StartTime) {
		return internal.NewValidationFieldError("end_time", "end_time must not be before start_time", internal.ErrCodeValidationFailed)
	}
	return nil
}

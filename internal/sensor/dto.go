package sensor

import (
	"strings"
	"time"

	"github.com/liuqy/experiment-management/internal"
)

// SensorDTO carries create and update payloads. end_time and end_reason
// must be supplied together or not at all.
type SensorDTO struct {
	Name      string     `json:"sensor_name"`
	PersonID  int64      `json:"person_id"`
	BatchID   int64      `json:"batch_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	EndReason *string    `json:"end_reason"`
}

func (d SensorDTO) Validate() *internal.AppError {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationFieldError("sensor_name", "sensor name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Name) > 100 {
		return internal.NewValidationFieldError("sensor_name", "sensor name must be at most 100 characters", internal.ErrCodeValidationFailed)
	}
	if d.PersonID == 0 {
		return internal.NewValidationFieldError("person_id", "person_id is required", internal.ErrCodeValidationFailed)
	}
	if d.BatchID == 0 {
		return internal.NewValidationFieldError("batch_id", "batch_id is required", internal.ErrCodeValidationFailed)
	}
	if d.StartTime.IsZero() {
		return internal.NewValidationFieldError("start_time", "start_time is required", internal.ErrCodeValidationFailed)
	}
	if (d.EndTime == nil) != (d.EndReason == nil) {
		return internal.NewInvalidOperationError("end_time and end_reason must be set together", internal.ErrCodeInvalidOperation)
	}
	if d.EndTime != nil {
		if d.EndTime.Before(d.StartTime) {
			return internal.NewValidationFieldError("end_time", "end_time must not be before start_time", internal.ErrCodeValidationFailed)
		}
		if strings.TrimSpace(*d.EndReason) == "" {
			return internal.NewValidationFieldError("end_reason", "end_reason must not be blank", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

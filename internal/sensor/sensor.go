package sensor

import "time"

// SensorResponse is the API shape of a sensor wear period, denormalized
// with the owning batch number and person name.
type SensorResponse struct {
	ID          int64      `json:"sensor_id"`
	Name        string     `json:"sensor_name"`
	PersonID    int64      `json:"person_id"`
	PersonName  string     `json:"person_name"`
	BatchID     int64      `json:"batch_id"`
	BatchNumber string     `json:"batch_number"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	EndReason   *string    `json:"end_reason"`
}

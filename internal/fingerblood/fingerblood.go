package fingerblood

import "time"

// RecordResponse is the API shape of a finger blood glucose record,
// denormalized with the owning batch number and person name.
type RecordResponse struct {
	ID                int64     `json:"record_id"`
	PersonID          int64     `json:"person_id"`
	PersonName        string    `json:"person_name"`
	BatchID           int64     `json:"batch_id"`
	BatchNumber       string    `json:"batch_number"`
	CollectionTime    time.Time `json:"collection_time"`
	BloodGlucoseValue float64   `json:"blood_glucose_value"`
}

package person

// PersonResponse is the API shape of a person, denormalized with the owning
// batch number when one is set.
type PersonResponse struct {
	ID          int64    `json:"person_id"`
	Name        string   `json:"person_name"`
	Gender      *string  `json:"gender,omitempty"`
	HeightCM    *float64 `json:"height_cm,omitempty"`
	WeightKG    *float64 `json:"weight_kg,omitempty"`
	Age         *int     `json:"age,omitempty"`
	BatchID     *int64   `json:"batch_id,omitempty"`
	BatchNumber *string  `json:"batch_number,omitempty"`
}

package experiment

import "time"

// Member is one person participating in an experiment.
type Member struct {
	PersonID   int64  `json:"person_id"`
	PersonName string `json:"person_name"`
}

// ExperimentResponse is the API shape of an experiment with its member set.
// The member set is never empty.
type ExperimentResponse struct {
	ID          int64     `json:"experiment_id"`
	BatchID     int64     `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	Content     string    `json:"experiment_content"`
	CreatedAt   time.Time `json:"created_at"`
	Members     []Member  `json:"members"`
}

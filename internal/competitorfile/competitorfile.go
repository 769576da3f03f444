package competitorfile

import "time"

// FileResponse is the API shape of a competitor file, denormalized with
// the owning batch number and person name.
type FileResponse struct {
	ID          int64     `json:"file_id"`
	PersonID    int64     `json:"person_id"`
	PersonName  string    `json:"person_name"`
	BatchID     int64     `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	UploadTime  time.Time `json:"upload_time"`
}

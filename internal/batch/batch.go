package batch

import (
	"time"

	batchDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/batch"
)

// BatchResponse is the API shape of a batch. A batch with no end time is
// still open.
type BatchResponse struct {
	ID          int64      `json:"batch_id"`
	BatchNumber string     `json:"batch_number"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

func ToResponse(b *batchDatamodel.Batch) BatchResponse {
	return BatchResponse{
		ID:          b.ID,
		BatchNumber: b.BatchNumber,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
	}
}

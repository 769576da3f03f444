package experiment

import "github.com/liuqy/experiment-management/internal"

// ExperimentDTO carries create and update payloads. The member list
// replaces the whole member set and must never be empty.
type ExperimentDTO struct {
	BatchID   int64   `json:"batch_id"`
	Content   string  `json:"experiment_content"`
	MemberIDs []int64 `json:"member_ids"`
}

type MemberDTO struct {
	PersonID int64 `json:"person_id"`
}

func (d ExperimentDTO) Validate() *internal.AppError {
	if d.BatchID == 0 {
		return internal.NewValidationFieldError("batch_id", "batch_id is required", internal.ErrCodeValidationFailed)
	}
	if len(d.MemberIDs) == 0 {
		return internal.NewValidationFieldError("member_ids", "at least one member is required", internal.ErrCodeValidationFailed)
	}
	seen := make(map[int64]bool, len(d.MemberIDs))
	for _, id := range d.MemberIDs {
		if id == 0 {
			return internal.NewValidationFieldError("member_ids", "member ids must be positive", internal.ErrCodeValidationFailed)
		}
		if seen[id] {
			return internal.NewValidationFieldError("member_ids", "member ids must be unique", internal.ErrCodeValidationFailed)
		}
		seen[id] = true
	}
	return nil
}

func (d MemberDTO) Validate() *internal.AppError {
	if d.PersonID == 0 {
		return internal.NewValidationFieldError("person_id", "person_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

package person

import (
	"github.com/liuqy/experiment-management/internal"
	personDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/person"
)

type PersonDTO struct {
	Name     string   `json:"person_name"`
	Gender   *string  `json:"gender"`
	HeightCM *float64 `json:"height_cm"`
	WeightKG *float64 `json:"weight_kg"`
	Age      *int     `json:"age"`
	BatchID  *int64   `json:"batch_id"`
}

func (d PersonDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("person_name", "person_name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Name) > 100 {
		return internal.NewValidationFieldError("person_name", "person_name must not exceed 100 characters", internal.ErrCodeValidationFailed)
	}
	if d.Gender != nil {
		switch *d.Gender {
		case personDatamodel.GenderMale, personDatamodel.GenderFemale, personDatamodel.GenderOther:
		default:
			return internal.NewValidationFieldError("gender", "gender must be one of Male, Female, Other", internal.ErrCodeValidationFailed)
		}
	}
	if d.Age != nil && (*d.Age < 0 || *d.Age > 150) {
		return internal.NewValidationFieldError("age", "age must be between 0 and 150", internal.ErrCodeValidationFailed)
	}
	if d.HeightCM != nil && *d.HeightCM <= 0 {
		return internal.NewValidationFieldError("height_cm", "height_cm must be positive", internal.ErrCodeValidationFailed)
	}
	if d.WeightKG != nil && *d.WeightKG <= 0 {
		return internal.NewValidationFieldError("weight_kg", "weight_kg must be positive", internal.ErrCodeValidationFailed)
	}
	return nil
}

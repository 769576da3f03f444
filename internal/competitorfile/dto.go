package competitorfile

import (
	"path/filepath"
	"strings"

	"github.com/liuqy/experiment-management/internal"
)

type RenameDTO struct {
	NewName string `json:"new_name"`
}

func (d RenameDTO) Validate() *internal.AppError {
	return validateFileName(d.NewName, "new_name")
}

// validateFileName rejects empty names and anything that would escape the
// owner directory.
func validateFileName(name, field string) *internal.AppError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return internal.NewValidationFieldError(field, "file name is required", internal.ErrCodeValidationFailed)
	}
	if len(trimmed) > 255 {
		return internal.NewValidationFieldError(field, "file name must be at most 255 characters", internal.ErrCodeValidationFailed)
	}
	if trimmed != filepath.Base(trimmed) || strings.ContainsAny(trimmed, "/\\") {
		return internal.NewValidationFieldError(field, "file name must not contain path separators", internal.ErrCodeValidationFailed)
	}
	return nil
}

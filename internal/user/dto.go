package user

import (
	"fmt"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/auth"
)

type GrantDTO struct {
	Module    string `json:"module"`
	CanRead   bool   `json:"can_read"`
	CanWrite  bool   `json:"can_write"`
	CanDelete bool   `json:"can_delete"`
}

// PermissionsDTO replaces a user's whole grant set. An empty list is
// valid and revokes everything.
type PermissionsDTO struct {
	Grants []GrantDTO `json:"permissions"`
}

func (d PermissionsDTO) Validate() *internal.AppError {
	seen := make(map[string]bool, len(d.Grants))
	for _, g := range d.Grants {
		if !auth.ValidModule(g.Module) {
			return internal.NewValidationFieldError("permissions", fmt.Sprintf("unknown module %q", g.Module), internal.ErrCodeValidationFailed)
		}
		if seen[g.Module] {
			return internal.NewValidationFieldError("permissions", fmt.Sprintf("duplicate module %q", g.Module), internal.ErrCodeValidationFailed)
		}
		seen[g.Module] = true
	}
	return nil
}

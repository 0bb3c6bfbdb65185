package profile

import (
	"strings"

	"github.com/frahmantamala/user-management/internal"
)

// ProfileDTO is the write shape for both create (ID zero) and update (ID
// set). Permissions is the full desired grant set, not a delta; entries only
// need their id.
type ProfileDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Permissions []PermissionRef `json:"permissions"`
}

type PermissionRef struct {
	ID int64 `json:"id"`
}

func (d ProfileDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// PermissionIDs returns the desired grant ids in request order.
func (d ProfileDTO) PermissionIDs() []int64 {
	ids := make([]int64, 0, len(d.Permissions))
	for _, p := range d.Permissions {
		ids = append(ids, p.ID)
	}
	return ids
}

// PermissionDTO is one entry in a batch permission save. Action must parse to
// a known value; an unknown action fails that entry, it is never coerced.
type PermissionDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func (d PermissionDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Resource) == "" {
		return internal.NewValidationFieldError("resource", "resource is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// SavePermissionsDTO is the batch save payload.
type SavePermissionsDTO struct {
	Permissions []PermissionDTO `json:"permissions"`
}

// DeletePermissionsDTO is the batch delete payload.
type DeletePermissionsDTO struct {
	IDs []int64 `json:"ids"`
}

// PermissionResult reports the fate of one batch entry. A failed entry never
// aborts the rest of the batch.
type PermissionResult struct {
	ID         int64       `json:"id,omitempty"`
	OK         bool        `json:"ok"`
	Error      string      `json:"error,omitempty"`
	Permission *Permission `json:"permission,omitempty"`
}

package user

import (
	"strings"

	"github.com/frahmantamala/user-management/internal"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

// UserDTO is the write shape for both create (ID zero) and update (ID set).
// Password is plaintext in transit only; blank on update means keep the
// stored hash. Profiles is the full desired membership set, not a delta.
type UserDTO struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password,omitempty"`
	Status   string       `json:"status"`
	Profiles []ProfileRef `json:"profiles"`
}

func (d UserDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "email is malformed", internal.ErrCodeValidationFailed)
	}
	if d.ID == 0 && d.Password == "" {
		return internal.NewValidationFieldError("password", "password is required for a new user", internal.ErrCodeValidationFailed)
	}
	if d.Status != "" && d.Status != userDatamodel.StatusActive && d.Status != userDatamodel.StatusInactive {
		return internal.NewValidationFieldError("status", "status must be Active or Inactive", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ProfileIDs returns the desired membership ids in request order.
func (d UserDTO) ProfileIDs() []int64 {
	ids := make([]int64, 0, len(d.Profiles))
	for _, p := range d.Profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

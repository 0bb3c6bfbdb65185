package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

// User is the read view served over HTTP: the stored fields plus the primary
// profile name (first membership) the UI shows in lists.
type User struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	RegisteredAt   time.Time    `json:"registered_at"`
	Status         string       `json:"status"`
	PrimaryProfile string       `json:"primary_profile"`
	Profiles       []ProfileRef `json:"profiles"`
}

// ProfileRef is a membership as seen from the user side.
type ProfileRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func FromDataModel(u *userDatamodel.User) *User {
	view := &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		RegisteredAt: u.RegisteredAt,
		Status:       u.Status,
		Profiles:     make([]ProfileRef, 0, len(u.Profiles)),
	}
	for _, p := range u.Profiles {
		view.Profiles = append(view.Profiles, ProfileRef{ID: p.ID, Name: p.Name})
	}
	if len(view.Profiles) > 0 {
		view.PrimaryProfile = view.Profiles[0].Name
	}
	return view
}

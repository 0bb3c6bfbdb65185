package profile

import (
	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
)

// Profile is the read view served over HTTP, grants included.
type Profile struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

// Permission is the catalog view. Resource is the opaque identifier the
// permission unlocks; Action is one of Create, Read, Update, Delete.
type Permission struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func FromDataModel(p *profileDatamodel.Profile) *Profile {
	view := &Profile{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Permissions: make([]Permission, 0, len(p.Permissions)),
	}
	for _, perm := range p.Permissions {
		view.Permissions = append(view.Permissions, PermissionFromDataModel(perm))
	}
	return view
}

func PermissionFromDataModel(p permissionDatamodel.Permission) Permission {
	return Permission{
		ID:       p.ID,
		Name:     p.Name,
		Resource: p.Resource,
		Action:   string(p.Action),
	}
}

package auth

import (
	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

// PermissionSource supplies the complete permission catalog, needed for the
// administrator bypass.
type PermissionSource interface {
	AllPermissions() ([]permissionDatamodel.Permission, error)
}

// Resolver computes the effective set of resource identifiers a user may
// access. The user must be loaded with its profiles and, transitively, each
// profile's permissions.
type Resolver struct {
	permissions PermissionSource
}

func NewResolver(permissions PermissionSource) *Resolver {
	return &Resolver{permissions: permissions}
}

// Resolve returns the deduplicated resource identifiers reachable through the
// user's profile grants. A membership to the Administrator profile returns
// the resources of every permission in the system instead, bypassing the
// grant sets entirely. A user with zero profiles resolves to an empty set,
// never an error.
func (r *Resolver) Resolve(u *userDatamodel.User) ([]string, error) {
	if u == nil {
		return nil, nil
	}

	if hasAdminMembership(u) {
		all, err := r.permissions.AllPermissions()
		if err != nil {
			return nil, err
		}
		return dedupeResources(flattenResources(all)), nil
	}

	var resources []string
	for _, p := range u.Profiles {
		resources = append(resources, flattenResources(p.Permissions)...)
	}
	return dedupeResources(resources), nil
}

func hasAdminMembership(u *userDatamodel.User) bool {
	for _, p := range u.Profiles {
		if p.ID == profileDatamodel.AdminProfileID {
			return true
		}
	}
	return false
}

func flattenResources(perms []permissionDatamodel.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.Resource)
	}
	return out
}

// dedupeResources keeps first-seen order so output is deterministic, though
// consumers treat the result as a set.
func dedupeResources(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

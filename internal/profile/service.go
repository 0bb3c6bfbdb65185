package profile

import (
	"log/slog"

	"github.com/frahmantamala/user-management/internal"
	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
	"github.com/frahmantamala/user-management/internal/core/membership"
)

// Repository is the entity-store surface for profiles, their grants and the
// permission catalog. Reads report absence as nil, nil. Profile writes that
// touch grants run in one transaction.
type Repository interface {
	GetAllProfiles() ([]*profileDatamodel.Profile, error)
	GetProfileByID(id int64) (*profileDatamodel.Profile, error)
	CreateProfile(p *profileDatamodel.Profile, permissionIDs []int64) error
	UpdateProfile(p *profileDatamodel.Profile, addPermissionIDs, removePermissionIDs []int64) error
	DeleteProfile(id int64) error
	// ExistingPermissionIDs filters ids down to permissions that are stored.
	ExistingPermissionIDs(ids []int64) ([]int64, error)

	AllPermissions() ([]permissionDatamodel.Permission, error)
	GetPermissionByID(id int64) (*permissionDatamodel.Permission, error)
	SavePermission(p *permissionDatamodel.Permission) error
	// DeletePermission removes the permission and any grants pointing at it.
	DeletePermission(id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetAll() ([]*Profile, error) {
	profiles, err := s.repo.GetAllProfiles()
	if err != nil {
		return nil, internal.NewInternalError("failed to list profiles", err)
	}
	views := make([]*Profile, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, FromDataModel(p))
	}
	return views, nil
}

func (s *Service) GetByID(id int64) (*Profile, error) {
	p, err := s.repo.GetProfileByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if p == nil {
		return nil, internal.ErrProfileNotFound
	}
	return FromDataModel(p), nil
}

// Save upserts a profile and reconciles its grant set to exactly the
// permissions the request names. Requested permissions that do not exist are
// skipped with a warning; re-sending the same payload is a no-op.
func (s *Service) Save(dto ProfileDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	desired, err := s.resolveDesiredPermissions(dto)
	if err != nil {
		return nil, err
	}

	if dto.ID == 0 {
		p := &profileDatamodel.Profile{Name: dto.Name, Description: dto.Description}
		if err := s.repo.CreateProfile(p, desired); err != nil {
			return nil, internal.NewInternalError("failed to create profile", err)
		}
		s.logger.Info("profile created", "profile_id", p.ID, "grants", len(desired))
		return s.GetByID(p.ID)
	}

	existing, err := s.repo.GetProfileByID(dto.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if existing == nil {
		return nil, internal.ErrProfileNotFound
	}

	existing.Name = dto.Name
	existing.Description = dto.Description

	current := make([]int64, 0, len(existing.Permissions))
	for _, p := range existing.Permissions {
		current = append(current, p.ID)
	}
	toAdd, toRemove := membership.Diff(current, desired)

	if err := s.repo.UpdateProfile(existing, toAdd, toRemove); err != nil {
		return nil, internal.NewInternalError("failed to update profile", err)
	}

	s.logger.Info("profile updated", "profile_id", existing.ID,
		"grants_added", len(toAdd), "grants_removed", len(toRemove))
	return s.GetByID(existing.ID)
}

// Delete removes a profile together with its grant and membership rows. The
// built-in administrator profile cannot be deleted.
func (s *Service) Delete(id int64) error {
	if profileDatamodel.IsProtected(id) {
		return internal.ErrDeleteProtected
	}

	p, err := s.repo.GetProfileByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load profile", err)
	}
	if p == nil {
		return internal.ErrProfileNotFound
	}

	if err := s.repo.DeleteProfile(id); err != nil {
		return internal.NewInternalError("failed to delete profile", err)
	}
	s.logger.Info("profile deleted", "profile_id", id)
	return nil
}

func (s *Service) ListPermissions() ([]Permission, error) {
	perms, err := s.repo.AllPermissions()
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	views := make([]Permission, 0, len(perms))
	for _, p := range perms {
		views = append(views, PermissionFromDataModel(p))
	}
	return views, nil
}

// SavePermissions upserts a batch of catalog entries. Each entry succeeds or
// fails on its own; a malformed action or a missing id fails that entry and
// the batch continues.
func (s *Service) SavePermissions(dto SavePermissionsDTO) ([]PermissionResult, error) {
	results := make([]PermissionResult, 0, len(dto.Permissions))
	for _, entry := range dto.Permissions {
		results = append(results, s.savePermission(entry))
	}
	return results, nil
}

func (s *Service) savePermission(entry PermissionDTO) PermissionResult {
	if err := entry.Validate(); err != nil {
		return PermissionResult{ID: entry.ID, Error: err.Error()}
	}

	action, err := permissionDatamodel.ParseAction(entry.Action)
	if err != nil {
		s.logger.Warn("rejecting permission with unknown action", "action", entry.Action)
		return PermissionResult{ID: entry.ID, Error: err.Error()}
	}

	p := &permissionDatamodel.Permission{
		ID:       entry.ID,
		Name:     entry.Name,
		Resource: entry.Resource,
		Action:   action,
	}

	if entry.ID != 0 {
		existing, err := s.repo.GetPermissionByID(entry.ID)
		if err != nil {
			return PermissionResult{ID: entry.ID, Error: err.Error()}
		}
		if existing == nil {
			return PermissionResult{ID: entry.ID, Error: internal.ErrPermissionNotFound.Error()}
		}
	}

	if err := s.repo.SavePermission(p); err != nil {
		return PermissionResult{ID: entry.ID, Error: err.Error()}
	}

	view := PermissionFromDataModel(*p)
	return PermissionResult{ID: p.ID, OK: true, Permission: &view}
}

// DeletePermissions removes a batch of catalog entries, each on its own.
// Deleting a permission also drops the grants that reference it.
func (s *Service) DeletePermissions(dto DeletePermissionsDTO) ([]PermissionResult, error) {
	results := make([]PermissionResult, 0, len(dto.IDs))
	for _, id := range dto.IDs {
		results = append(results, s.deletePermission(id))
	}
	return results, nil
}

func (s *Service) deletePermission(id int64) PermissionResult {
	existing, err := s.repo.GetPermissionByID(id)
	if err != nil {
		return PermissionResult{ID: id, Error: err.Error()}
	}
	if existing == nil {
		return PermissionResult{ID: id, Error: internal.ErrPermissionNotFound.Error()}
	}

	if err := s.repo.DeletePermission(id); err != nil {
		return PermissionResult{ID: id, Error: err.Error()}
	}
	s.logger.Info("permission deleted", "permission_id", id)
	return PermissionResult{ID: id, OK: true}
}

func (s *Service) resolveDesiredPermissions(dto ProfileDTO) ([]int64, error) {
	requested, skipped := membership.CollectIDs(dto.PermissionIDs())
	if skipped > 0 {
		s.logger.Warn("ignoring permission entries without an id", "count", skipped)
	}
	if len(requested) == 0 {
		return nil, nil
	}

	existing, err := s.repo.ExistingPermissionIDs(requested)
	if err != nil {
		return nil, internal.NewInternalError("failed to verify permissions", err)
	}
	if len(existing) < len(requested) {
		s.logger.Warn("ignoring grants to unknown permissions",
			"requested", len(requested), "found", len(existing))
	}
	return existing, nil
}

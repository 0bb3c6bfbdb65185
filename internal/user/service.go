package user

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/user-management/internal"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/core/membership"
)

// Repository is the entity-store surface for users and their memberships.
// Reads report absence as nil, nil. Writes that touch memberships run in one
// transaction so a user is never stored with a half-applied membership set.
type Repository interface {
	GetAll() ([]*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	Create(u *userDatamodel.User, profileIDs []int64) error
	Update(u *userDatamodel.User, addProfileIDs, removeProfileIDs []int64) error
	Delete(id int64) error
	// ExistingProfileIDs filters ids down to profiles that are actually stored.
	ExistingProfileIDs(ids []int64) ([]int64, error)
}

// PasswordHasher is satisfied by the auth service so there is exactly one
// bcrypt configuration in the process.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, logger: logger}
}

func (s *Service) GetAll() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	views := make([]*User, 0, len(users))
	for _, u := range users {
		views = append(views, FromDataModel(u))
	}
	return views, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// Save upserts a user. A zero ID creates; a set ID updates an existing row
// and fails with not-found when no such user is stored. Either way the
// stored membership set is reconciled to exactly the profiles the request
// names: desired profiles that do not exist are skipped with a warning, and
// re-sending the same payload is a no-op.
func (s *Service) Save(dto UserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	desired, err := s.resolveDesiredProfiles(dto)
	if err != nil {
		return nil, err
	}

	if dto.ID == 0 {
		return s.create(dto, desired)
	}
	return s.update(dto, desired)
}

func (s *Service) create(dto UserDTO, desired []int64) (*User, error) {
	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	status := dto.Status
	if status == "" {
		status = userDatamodel.StatusActive
	}

	u := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		RegisteredAt: time.Now(),
		Status:       status,
	}
	if err := s.repo.Create(u, desired); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "profiles", len(desired))
	return s.GetByID(u.ID)
}

func (s *Service) update(dto UserDTO, desired []int64) (*User, error) {
	existing, err := s.repo.GetByID(dto.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if existing == nil {
		return nil, internal.ErrUserNotFound
	}

	existing.Name = dto.Name
	existing.Email = dto.Email
	if dto.Status != "" {
		existing.Status = dto.Status
	}
	if dto.Password != "" {
		hash, err := s.hasher.HashPassword(dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		existing.PasswordHash = hash
	}

	current := make([]int64, 0, len(existing.Profiles))
	for _, p := range existing.Profiles {
		current = append(current, p.ID)
	}
	toAdd, toRemove := membership.Diff(current, desired)

	if err := s.repo.Update(existing, toAdd, toRemove); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.logger.Info("user updated", "user_id", existing.ID,
		"memberships_added", len(toAdd), "memberships_removed", len(toRemove))
	return s.GetByID(existing.ID)
}

// Delete removes a user and, through the schema's cascade, its memberships.
// The built-in administrator cannot be deleted.
func (s *Service) Delete(id int64) error {
	if userDatamodel.IsProtected(id) {
		return internal.ErrDeleteProtected
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// resolveDesiredProfiles turns the request's membership list into stored
// profile ids: ids without a value and ids naming no stored profile are
// skipped with a warning rather than failing the whole save.
func (s *Service) resolveDesiredProfiles(dto UserDTO) ([]int64, error) {
	requested, skipped := membership.CollectIDs(dto.ProfileIDs())
	if skipped > 0 {
		s.logger.Warn("ignoring profile entries without an id", "count", skipped)
	}
	if len(requested) == 0 {
		return nil, nil
	}

	existing, err := s.repo.ExistingProfileIDs(requested)
	if err != nil {
		return nil, internal.NewInternalError("failed to verify profiles", err)
	}
	if len(existing) < len(requested) {
		s.logger.Warn("ignoring memberships to unknown profiles",
			"requested", len(requested), "found", len(existing))
	}
	return existing, nil
}

package postgres

import (
	"errors"

	"gorm.io/gorm"

	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/profile"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) profile.Repository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetAllProfiles() ([]*profileDatamodel.Profile, error) {
	var profiles []*profileDatamodel.Profile
	err := r.db.Preload("Permissions").Order("id ASC").Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) GetProfileByID(id int64) (*profileDatamodel.Profile, error) {
	var p profileDatamodel.Profile
	err := r.db.Preload("Permissions").Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) CreateProfile(p *profileDatamodel.Profile, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(p).Error; err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			g := profileDatamodel.PermissionGrant{ProfileID: p.ID, PermissionID: pid}
			if err := tx.Create(&g).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProfileRepository) UpdateProfile(p *profileDatamodel.Profile, addPermissionIDs, removePermissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Save(p).Error; err != nil {
			return err
		}
		for _, pid := range addPermissionIDs {
			g := profileDatamodel.PermissionGrant{ProfileID: p.ID, PermissionID: pid}
			if err := tx.Create(&g).Error; err != nil {
				return err
			}
		}
		if len(removePermissionIDs) > 0 {
			if err := tx.Where("profile_id = ? AND permission_id IN ?", p.ID, removePermissionIDs).
				Delete(&profileDatamodel.PermissionGrant{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProfileRepository) DeleteProfile(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&profileDatamodel.PermissionGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&userDatamodel.ProfileMembership{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&profileDatamodel.Profile{}).Error
	})
}

func (r *ProfileRepository) ExistingPermissionIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.db.Table("permissions").Where("id IN ?", ids).Order("id ASC").Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(found))
	for _, id := range found {
		set[id] = struct{}{}
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *ProfileRepository) AllPermissions() ([]permissionDatamodel.Permission, error) {
	var perms []permissionDatamodel.Permission
	err := r.db.Order("id ASC").Find(&perms).Error
	return perms, err
}

func (r *ProfileRepository) GetPermissionByID(id int64) (*permissionDatamodel.Permission, error) {
	var p permissionDatamodel.Permission
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) SavePermission(p *permissionDatamodel.Permission) error {
	if p.ID == 0 {
		return r.db.Create(p).Error
	}
	return r.db.Save(p).Error
}

func (r *ProfileRepository) DeletePermission(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&profileDatamodel.PermissionGrant{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&permissionDatamodel.Permission{}).Error
	})
}

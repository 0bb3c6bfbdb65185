package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/user-management/internal/auth"
	accessDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/access"
	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.Repository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Preload("Profiles.Permissions").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Preload("Profiles.Permissions").Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepository) AllPermissions() ([]permissionDatamodel.Permission, error) {
	var perms []permissionDatamodel.Permission
	err := r.db.Order("id ASC").Find(&perms).Error
	return perms, err
}

func (r *AuthRepository) RecordAccess(ev *accessDatamodel.Event) error {
	return r.db.Omit("User").Create(ev).Error
}

package postgres

import (
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.Preload("Profiles").Order("id ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Preload("Profiles").Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(u *userDatamodel.User, profileIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profiles").Create(u).Error; err != nil {
			return err
		}
		for _, pid := range profileIDs {
			m := userDatamodel.ProfileMembership{UserID: u.ID, ProfileID: pid}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) Update(u *userDatamodel.User, addProfileIDs, removeProfileIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profiles").Save(u).Error; err != nil {
			return err
		}
		for _, pid := range addProfileIDs {
			m := userDatamodel.ProfileMembership{UserID: u.ID, ProfileID: pid}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		if len(removeProfileIDs) > 0 {
			if err := tx.Where("user_id = ? AND profile_id IN ?", u.ID, removeProfileIDs).
				Delete(&userDatamodel.ProfileMembership{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.ProfileMembership{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
	})
}

func (r *UserRepository) ExistingProfileIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.db.Table("profiles").Where("id IN ?", ids).Order("id ASC").Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	// Preserve request order; the query result is a set.
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

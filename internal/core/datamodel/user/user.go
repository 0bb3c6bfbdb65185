package user

import (
	"time"

	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
)

// AdminUserID is the reserved administrator account; it may never be deleted.
const AdminUserID int64 = 1

// IsProtected reports whether the user id is reserved and must not be deleted.
func IsProtected(id int64) bool {
	return id == AdminUserID
}

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type User struct {
	ID           int64                        `gorm:"primaryKey" json:"id"`
	Name         string                       `gorm:"column:name;not null" json:"name"`
	Email        string                       `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string                       `gorm:"column:password_hash;not null" json:"-"`
	RegisteredAt time.Time                    `gorm:"column:registered_at" json:"registered_at"`
	Status       string                       `gorm:"column:status" json:"status"`
	Profiles     []profileDatamodel.Profile   `gorm:"many2many:profile_memberships;joinForeignKey:UserID;joinReferences:ProfileID" json:"profiles"`
}

func (User) TableName() string {
	return "users"
}

// ProfileMembership is the join row making a profile part of a user's profile
// set. Rows are written only as a side effect of a user save.
type ProfileMembership struct {
	UserID    int64 `gorm:"primaryKey;column:user_id"`
	ProfileID int64 `gorm:"primaryKey;column:profile_id"`
}

func (ProfileMembership) TableName() string {
	return "profile_memberships"
}

// IsAdministrator reports whether any loaded membership references the
// reserved Administrator profile.
func (u *User) IsAdministrator() bool {
	for _, p := range u.Profiles {
		if p.ID == profileDatamodel.AdminProfileID {
			return true
		}
	}
	return false
}

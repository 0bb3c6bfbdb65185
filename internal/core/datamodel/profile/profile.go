package profile

import (
	permissionDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/permission"
)

// AdminProfileID is the reserved Administrator profile. Users holding a
// membership to it bypass grant resolution and may never be deleted.
const AdminProfileID int64 = 1

// IsProtected reports whether the profile id is reserved and must not be deleted.
func IsProtected(id int64) bool {
	return id == AdminProfileID
}

// Profile is a named role aggregating a set of permissions.
type Profile struct {
	ID          int64                             `gorm:"primaryKey" json:"id"`
	Name        string                            `gorm:"column:name;not null" json:"name"`
	Description string                            `gorm:"column:description" json:"description"`
	Permissions []permissionDatamodel.Permission  `gorm:"many2many:permission_grants;joinForeignKey:ProfileID;joinReferences:PermissionID" json:"permissions"`
}

func (Profile) TableName() string {
	return "profiles"
}

// PermissionGrant is the join row making a permission part of a profile's set.
// It has no independent lifecycle: rows are written only as a side effect of
// a profile save.
type PermissionGrant struct {
	ProfileID    int64 `gorm:"primaryKey;column:profile_id"`
	PermissionID int64 `gorm:"primaryKey;column:permission_id"`
}

func (PermissionGrant) TableName() string {
	return "permission_grants"
}

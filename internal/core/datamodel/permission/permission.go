package permission

import (
	"fmt"
	"strings"
)

// Action is the closed set of operations a permission can grant on a resource.
type Action string

const (
	ActionCreate Action = "Create"
	ActionRead   Action = "Read"
	ActionUpdate Action = "Update"
	ActionDelete Action = "Delete"
)

// ParseAction maps a caller-supplied string onto the closed Action set.
// Unrecognized input is an error, never a silent default.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return ActionCreate, nil
	case "read":
		return ActionRead, nil
	case "update":
		return ActionUpdate, nil
	case "delete":
		return ActionDelete, nil
	default:
		return "", fmt.Errorf("unrecognized permission action %q", s)
	}
}

// Permission is an atomic capability naming a protected resource and an action.
// (resource, action) pairs are not unique; identity is the numeric key only.
type Permission struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"column:name;not null" json:"name"`
	Resource string `gorm:"column:resource;not null" json:"resource"`
	Action   Action `gorm:"column:action;not null" json:"action"`
}

func (Permission) TableName() string {
	return "permissions"
}

package models

import (
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

const RolePrefix = "ROLE_"

var roleNamePattern = regexp.MustCompile(`^ROLE_.*$`)

// Role is a single (username, role) grant. Rows are owned by their User and
// removed with it.
type Role struct {
	Username string `gorm:"primaryKey;size:50" json:"-"`
	Name     string `gorm:"primaryKey;column:role;size:50" json:"role"`
}

func (Role) TableName() string {
	return "user_roles"
}

func IsValidRoleName(name string) bool {
	return roleNamePattern.MatchString(name)
}

// NewRole is the only constructor for roles; it rejects names without the
// ROLE_ prefix.
func NewRole(username, name string) (Role, error) {
	if !IsValidRoleName(name) {
		return Role{}, fmt.Errorf("role %q must start with %s", name, RolePrefix)
	}
	return Role{Username: username, Name: name}, nil
}

func (role *Role) BeforeSave(tx *gorm.DB) (err error) {
	if !IsValidRoleName(role.Name) {
		return fmt.Errorf("role %q must start with %s", role.Name, RolePrefix)
	}
	return
}

// RoleNames returns the role names in the order given, without duplicates.
func RoleNames(roles []Role) []string {
	seen := make(map[string]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		if _, ok := seen[role.Name]; ok {
			continue
		}
		seen[role.Name] = struct{}{}
		names = append(names, role.Name)
	}
	return names
}

package models

import (
	"regexp"
	"strings"
	"time"
)

// Usernames appear as a single URL path segment.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// User is keyed by username. Roles, tickets, feedback and organized events
// belong to the user and are deleted with it; the photo is only referenced.
type User struct {
	Username      string     `gorm:"primaryKey;size:50" json:"username"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Password      string     `gorm:"not null" json:"-"`
	Enabled       bool       `gorm:"not null" json:"enabled"`
	PhotoFilename *string    `gorm:"uniqueIndex" json:"photo,omitempty"`
	Photo         *UserPhoto `gorm:"foreignKey:PhotoFilename;references:Filename" json:"-"`
	Roles         []Role     `gorm:"foreignKey:Username;references:Username" json:"-"`
	Events        []Event    `gorm:"foreignKey:OrganizerUsername;references:Username" json:"-"`
	Tickets       []Ticket   `gorm:"foreignKey:OwnerUsername;references:Username" json:"-"`
	Feedback      []Feedback `gorm:"foreignKey:Username;references:Username" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (user *User) HasRole(name string) bool {
	for _, role := range user.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

func IsValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// NormalizeEmail lowercases and trims an address so the unique index on
// email is effectively case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (user *User) RoleNames() []string {
	return RoleNames(user.Roles)
}

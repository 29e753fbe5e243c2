package models

import "time"

// UserPhoto lives independently of the user that references it.
type UserPhoto struct {
	Filename    string    `gorm:"primaryKey;size:255" json:"filename"`
	ContentType string    `gorm:"not null" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;not null;index" json:"username"`
	User         *User     `gorm:"foreignKey:Username;references:Username" json:"-"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Event        *Event    `gorm:"foreignKey:EventID" json:"-"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comment      string    `gorm:"type:text" json:"comment"`
	FeedbackDate time.Time `gorm:"not null" json:"feedback_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

func (feedback *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if feedback.ID == uuid.Nil {
		feedback.ID = uuid.New()
	}
	if feedback.FeedbackDate.IsZero() {
		feedback.FeedbackDate = time.Now()
	}
	return
}

func (feedback *Feedback) BeforeSave(tx *gorm.DB) (err error) {
	if !ValidRating(feedback.Rating) {
		return fmt.Errorf("rating %d outside %d..%d", feedback.Rating, MinRating, MaxRating)
	}
	return
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Event struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizerUsername *string         `gorm:"size:50;index" json:"organizer,omitempty"`
	Organizer         *User           `gorm:"foreignKey:OrganizerUsername;references:Username" json:"-"`
	Name              string          `gorm:"not null" json:"name"`
	Location          string          `gorm:"not null" json:"location"`
	StartTime         time.Time       `gorm:"not null" json:"start_time"`
	EndTime           time.Time       `gorm:"not null" json:"end_time"`
	Capacity          int             `gorm:"not null" json:"capacity"`
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Participants      []User          `gorm:"many2many:event_participants;joinForeignKey:EventID;joinReferences:Username" json:"-"`
	Tickets           []Ticket        `gorm:"foreignKey:EventID" json:"-"`
	Feedback          []Feedback      `gorm:"foreignKey:EventID" json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// EventParticipant is the join row behind Event.Participants. The composite
// key makes duplicate participation impossible at the storage layer.
type EventParticipant struct {
	EventID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username string    `gorm:"primaryKey;size:50"`
}

func (EventParticipant) TableName() string {
	return "event_participants"
}

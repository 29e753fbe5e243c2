package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TicketType string

const (
	TicketVIP       TicketType = "VIP"
	TicketStandard  TicketType = "STANDARD"
	TicketFree      TicketType = "FREE"
	TicketStudent   TicketType = "STUDENT"
	TicketBackstage TicketType = "BACKSTAGE"
)

var TicketTypes = []TicketType{TicketVIP, TicketStandard, TicketFree, TicketStudent, TicketBackstage}

// ParseTicketType accepts only the exact enumeration values.
func ParseTicketType(s string) (TicketType, error) {
	for _, t := range TicketTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown ticket type %q", s)
}

const TicketCodePrefix = "TICKET-"

// NewTicketCode returns TICKET- followed by the first 8 characters of a
// random UUID, uppercased. Codes are display-only and never checked for
// collisions.
func NewTicketCode() string {
	return TicketCodePrefix + strings.ToUpper(uuid.New().String()[:8])
}

type Ticket struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUsername string          `gorm:"size:50;not null;index" json:"owner"`
	Owner         *User           `gorm:"foreignKey:OwnerUsername;references:Username" json:"-"`
	EventID       *uuid.UUID      `gorm:"type:uuid;index" json:"event_id,omitempty"`
	Event         *Event          `gorm:"foreignKey:EventID" json:"-"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Code          string          `gorm:"uniqueIndex;not null" json:"code"`
	PurchaseDate  time.Time       `gorm:"not null" json:"purchase_date"`
	Type          TicketType      `gorm:"type:varchar(16);not null" json:"type"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if ticket.Code == "" {
		ticket.Code = NewTicketCode()
	}
	return
}

func (ticket *Ticket) BeforeSave(tx *gorm.DB) (err error) {
	_, err = ParseTicketType(string(ticket.Type))
	return
}

func (ticket *Ticket) LinkedTo(eventID uuid.UUID) bool {
	return ticket.EventID != nil && *ticket.EventID == eventID
}

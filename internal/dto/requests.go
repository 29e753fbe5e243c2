// Package dto holds the JSON shapes exchanged over HTTP together with
// their gin binding rules.
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuthenticateRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=50,username"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6,max=72"`
	Enabled  *bool    `json:"enabled"`
	Roles    []string `json:"roles" binding:"omitempty,dive,rolename"`
}

// UpdateUserRequest replaces email and enabled; the password only changes
// when one is supplied.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
	Enabled  *bool  `json:"enabled" binding:"required"`
}

type RolesRequest struct {
	Roles []string `json:"roles" binding:"required,min=1,dive,rolename"`
}

type UsernamesRequest struct {
	Usernames []string `json:"usernames" binding:"required,min=1,dive,required"`
}

type TicketIDsRequest struct {
	TicketIDs []string `json:"ticket_ids" binding:"required,min=1,dive,uuid"`
}

type FeedbackIDsRequest struct {
	FeedbackIDs []string `json:"feedback_ids" binding:"required,min=1,dive,uuid"`
}

type OrganizerRequest struct {
	Username string `json:"username" binding:"required"`
}

type AssignPhotoRequest struct {
	Filename string `json:"filename" binding:"required"`
}

type EventRequest struct {
	Name      string          `json:"name" binding:"required,max=255"`
	Location  string          `json:"location" binding:"required,max=255"`
	StartTime time.Time       `json:"start_time" binding:"required"`
	EndTime   time.Time       `json:"end_time" binding:"required,gtfield=StartTime"`
	Capacity  int             `json:"capacity" binding:"gte=0"`
	Price     decimal.Decimal `json:"price"`
	Organizer *string         `json:"organizer"`
}

type TicketRequest struct {
	EventID *string         `json:"event_id" binding:"omitempty,uuid"`
	Price   decimal.Decimal `json:"price"`
	Type    string          `json:"type" binding:"required,tickettype"`
}

type FeedbackRequest struct {
	Username string `json:"username" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment"`
}

type UpdateFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

package dto

import (
	"time"

	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuthenticateResponse struct {
	JWT       string    `json:"jwt"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthenticatedResponse struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Authorities []string `json:"authorities"`
}

func NewAuthenticatedResponse(p services.Principal) AuthenticatedResponse {
	return AuthenticatedResponse{Username: p.Username, Email: p.Email, Authorities: p.Authorities}
}

type UserResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Enabled   bool      `json:"enabled"`
	Roles     []string  `json:"roles"`
	Photo     *string   `json:"photo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		Enabled:   u.Enabled,
		Roles:     u.RoleNames(),
		Photo:     u.PhotoFilename,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

type EventResponse struct {
	ID        uuid.UUID       `json:"id"`
	Organizer *string         `json:"organizer"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Capacity  int             `json:"capacity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewEventResponse(e models.Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		Organizer: e.OrganizerUsername,
		Name:      e.Name,
		Location:  e.Location,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Capacity:  e.Capacity,
		Price:     e.Price,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func NewEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e))
	}
	return out
}

type TicketResponse struct {
	ID           uuid.UUID         `json:"id"`
	Owner        string            `json:"owner"`
	EventID      *uuid.UUID        `json:"event_id"`
	Price        decimal.Decimal   `json:"price"`
	Code         string            `json:"code"`
	PurchaseDate time.Time         `json:"purchase_date"`
	Type         models.TicketType `json:"type"`
}

func NewTicketResponse(t models.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Owner:        t.OwnerUsername,
		EventID:      t.EventID,
		Price:        t.Price,
		Code:         t.Code,
		PurchaseDate: t.PurchaseDate,
		Type:         t.Type,
	}
}

func NewTicketResponses(tickets []models.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return out
}

type FeedbackResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	EventID      uuid.UUID `json:"event_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	FeedbackDate time.Time `json:"feedback_date"`
}

func NewFeedbackResponse(f models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:           f.ID,
		Username:     f.Username,
		EventID:      f.EventID,
		Rating:       f.Rating,
		Comment:      f.Comment,
		FeedbackDate: f.FeedbackDate,
	}
}

func NewFeedbackResponses(feedback []models.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(feedback))
	for _, f := range feedback {
		out = append(out, NewFeedbackResponse(f))
	}
	return out
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page repositories.Page, total int64) Pagination {
	page = page.Normalize()
	return Pagination{
		Total:      total,
		Page:       page.Number,
		Limit:      page.Limit,
		TotalPages: (total + int64(page.Limit) - 1) / int64(page.Limit),
	}
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Pagination
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Pagination
}

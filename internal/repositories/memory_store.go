package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps every table in maps guarded by one mutex. Transactions
// work on a copy that replaces the live data only when fn succeeds.
// It is intended for tests and local development wiring.
type MemoryStore struct {
	mu   sync.RWMutex
	data *memoryData
	inTx bool
	now  func() time.Time
}

type memoryData struct {
	users        map[string]models.User
	roles        map[string][]string
	events       map[uuid.UUID]models.Event
	participants map[uuid.UUID][]string
	tickets      map[uuid.UUID]models.Ticket
	feedback     map[uuid.UUID]models.Feedback
	photos       map[string]models.UserPhoto
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:        make(map[string]models.User),
		roles:        make(map[string][]string),
		events:       make(map[uuid.UUID]models.Event),
		participants: make(map[uuid.UUID][]string),
		tickets:      make(map[uuid.UUID]models.Ticket),
		feedback:     make(map[uuid.UUID]models.Feedback),
		photos:       make(map[string]models.UserPhoto),
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.roles {
		c.roles[k] = append([]string(nil), v...)
	}
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.participants {
		c.participants[k] = append([]string(nil), v...)
	}
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	for k, v := range d.feedback {
		c.feedback[k] = v
	}
	for k, v := range d.photos {
		c.photos[k] = v
	}
	return c
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData(), now: time.Now}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *MemoryStore) read() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *MemoryStore) write() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyUUID(p *uuid.UUID) *uuid.UUID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *MemoryStore) userWithRoles(u models.User) models.User {
	u.PhotoFilename = copyString(u.PhotoFilename)
	names := append([]string(nil), s.data.roles[u.Username]...)
	sort.Strings(names)
	u.Roles = make([]models.Role, 0, len(names))
	for _, name := range names {
		u.Roles = append(u.Roles, models.Role{Username: u.Username, Name: name})
	}
	return u
}

func paginate[T any](items []T, page Page) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + page.Normalize().Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Users

func (s *MemoryStore) FindUser(_ context.Context, username string) (models.User, error) {
	defer s.read()()
	u, ok := s.data.users[username]
	if !ok {
		return models.User{}, apperr.NotFound("user", username)
	}
	return s.userWithRoles(u), nil
}

func (s *MemoryStore) ListUsers(_ context.Context, page Page) ([]models.User, int64, error) {
	defer s.read()()
	names := make([]string, 0, len(s.data.users))
	for name := range s.data.users {
		names = append(names, name)
	}
	sort.Strings(names)
	users := make([]models.User, 0, len(names))
	for _, name := range paginate(names, page) {
		users = append(users, s.userWithRoles(s.data.users[name]))
	}
	return users, int64(len(names)), nil
}

func (s *MemoryStore) UserExists(_ context.Context, username string) (bool, error) {
	defer s.read()()
	_, ok := s.data.users[username]
	return ok, nil
}

func (s *MemoryStore) EmailTaken(_ context.Context, email, exceptUsername string) (bool, error) {
	defer s.read()()
	return s.emailTaken(email, exceptUsername), nil
}

func (s *MemoryStore) emailTaken(email, exceptUsername string) bool {
	email = strings.TrimSpace(email)
	for _, u := range s.data.users {
		if u.Username != exceptUsername && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) photoTaken(filename *string, exceptUsername string) bool {
	if filename == nil {
		return false
	}
	for _, u := range s.data.users {
		if u.Username != exceptUsername && u.PhotoFilename != nil && *u.PhotoFilename == *filename {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	defer s.write()()
	if _, ok := s.data.users[user.Username]; ok {
		return apperr.Conflict(apperr.ErrUsernameAlreadyExists.Code, "username already exists")
	}
	if s.emailTaken(user.Email, "") {
		return apperr.Conflict(apperr.ErrEmailAlreadyExists.Code, "email already exists")
	}
	if s.photoTaken(user.PhotoFilename, "") {
		return apperr.Conflict(apperr.ErrPhotoAlreadyAssigned.Code, "photo is already assigned to another user")
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.PhotoFilename = copyString(user.PhotoFilename)
	stored.Roles, stored.Events, stored.Tickets, stored.Feedback, stored.Photo = nil, nil, nil, nil, nil
	s.data.users[user.Username] = stored
	return nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	defer s.write()()
	existing, ok := s.data.users[user.Username]
	if !ok {
		return apperr.NotFound("user", user.Username)
	}
	if s.emailTaken(user.Email, user.Username) {
		return apperr.Conflict(apperr.ErrEmailAlreadyExists.Code, "email already exists")
	}
	if s.photoTaken(user.PhotoFilename, user.Username) {
		return apperr.Conflict(apperr.ErrPhotoAlreadyAssigned.Code, "photo is already assigned to another user")
	}
	existing.Email = user.Email
	existing.Password = user.Password
	existing.Enabled = user.Enabled
	existing.PhotoFilename = copyString(user.PhotoFilename)
	existing.UpdatedAt = s.now()
	user.UpdatedAt = existing.UpdatedAt
	s.data.users[user.Username] = existing
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, username string) error {
	defer s.write()()
	if _, ok := s.data.users[username]; !ok {
		return apperr.NotFound("user", username)
	}
	delete(s.data.users, username)
	return nil
}

func (s *MemoryStore) AddRoles(_ context.Context, roles []models.Role) error {
	defer s.write()()
	for i := range roles {
		if err := roles[i].BeforeSave(nil); err != nil {
			return err
		}
	}
	for _, role := range roles {
		existing := s.data.roles[role.Username]
		found := false
		for _, name := range existing {
			if name == role.Name {
				found = true
				break
			}
		}
		if !found {
			s.data.roles[role.Username] = append(existing, role.Name)
		}
	}
	return nil
}

func (s *MemoryStore) RemoveRoles(_ context.Context, username string, names []string) error {
	defer s.write()()
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[name] = struct{}{}
	}
	kept := s.data.roles[username][:0:0]
	for _, name := range s.data.roles[username] {
		if _, ok := drop[name]; !ok {
			kept = append(kept, name)
		}
	}
	s.data.roles[username] = kept
	return nil
}

func (s *MemoryStore) DeleteRolesByUser(_ context.Context, username string) error {
	defer s.write()()
	delete(s.data.roles, username)
	return nil
}

// Events

func (s *MemoryStore) FindEvent(_ context.Context, id uuid.UUID) (models.Event, error) {
	defer s.read()()
	e, ok := s.data.events[id]
	if !ok {
		return models.Event{}, apperr.NotFound("event", id)
	}
	e.OrganizerUsername = copyString(e.OrganizerUsername)
	return e, nil
}

func (s *MemoryStore) ListEvents(_ context.Context, filter EventFilter, page Page) ([]models.Event, int64, error) {
	defer s.read()()
	location := strings.ToLower(strings.TrimSpace(filter.Location))
	matched := make([]models.Event, 0, len(s.data.events))
	for _, e := range s.data.events {
		if location != "" && !strings.Contains(strings.ToLower(e.Location), location) {
			continue
		}
		if filter.From != nil && e.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.StartTime.After(*filter.To) {
			continue
		}
		e.OrganizerUsername = copyString(e.OrganizerUsername)
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.Before(matched[j].StartTime)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *MemoryStore) ListEventIDsByOrganizer(_ context.Context, username string) ([]uuid.UUID, error) {
	defer s.read()()
	var ids []uuid.UUID
	for id, e := range s.data.events {
		if e.OrganizerUsername != nil && *e.OrganizerUsername == username {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *MemoryStore) CreateEvent(_ context.Context, event *models.Event) error {
	defer s.write()()
	if err := event.BeforeCreate(nil); err != nil {
		return err
	}
	if err := s.checkUserRef(event.OrganizerUsername); err != nil {
		return err
	}
	now := s.now()
	event.CreatedAt, event.UpdatedAt = now, now
	stored := *event
	stored.OrganizerUsername = copyString(event.OrganizerUsername)
	stored.Organizer, stored.Participants, stored.Tickets, stored.Feedback = nil, nil, nil, nil
	s.data.events[event.ID] = stored
	return nil
}

func (s *MemoryStore) SaveEvent(_ context.Context, event *models.Event) error {
	defer s.write()()
	existing, ok := s.data.events[event.ID]
	if !ok {
		return apperr.NotFound("event", event.ID)
	}
	if err := s.checkUserRef(event.OrganizerUsername); err != nil {
		return err
	}
	existing.OrganizerUsername = copyString(event.OrganizerUsername)
	existing.Name = event.Name
	existing.Location = event.Location
	existing.StartTime = event.StartTime
	existing.EndTime = event.EndTime
	existing.Capacity = event.Capacity
	existing.Price = event.Price
	existing.UpdatedAt = s.now()
	event.UpdatedAt = existing.UpdatedAt
	s.data.events[event.ID] = existing
	return nil
}

func (s *MemoryStore) DeleteEvent(_ context.Context, id uuid.UUID) error {
	defer s.write()()
	if _, ok := s.data.events[id]; !ok {
		return apperr.NotFound("event", id)
	}
	delete(s.data.events, id)
	return nil
}

// checkUserRef mirrors the foreign key on user references.
func (s *MemoryStore) checkUserRef(username *string) error {
	if username == nil {
		return nil
	}
	if _, ok := s.data.users[*username]; !ok {
		return apperr.NotFound("user", *username)
	}
	return nil
}

func (s *MemoryStore) ListParticipants(_ context.Context, eventID uuid.UUID) ([]models.User, error) {
	defer s.read()()
	names := append([]string(nil), s.data.participants[eventID]...)
	sort.Strings(names)
	users := make([]models.User, 0, len(names))
	for _, name := range names {
		if u, ok := s.data.users[name]; ok {
			users = append(users, s.userWithRoles(u))
		}
	}
	return users, nil
}

func (s *MemoryStore) AddParticipants(_ context.Context, eventID uuid.UUID, usernames []string) error {
	defer s.write()()
	if _, ok := s.data.events[eventID]; !ok {
		return apperr.NotFound("event", eventID)
	}
	for _, name := range usernames {
		if _, ok := s.data.users[name]; !ok {
			return apperr.NotFound("user", name)
		}
	}
	current := s.data.participants[eventID]
	for _, name := range usernames {
		if !containsString(current, name) {
			current = append(current, name)
		}
	}
	s.data.participants[eventID] = current
	return nil
}

func (s *MemoryStore) RemoveParticipants(_ context.Context, eventID uuid.UUID, usernames []string) error {
	defer s.write()()
	kept := s.data.participants[eventID][:0:0]
	for _, name := range s.data.participants[eventID] {
		if !containsString(usernames, name) {
			kept = append(kept, name)
		}
	}
	s.data.participants[eventID] = kept
	return nil
}

func (s *MemoryStore) DeleteParticipationsByEvent(_ context.Context, eventID uuid.UUID) error {
	defer s.write()()
	delete(s.data.participants, eventID)
	return nil
}

func (s *MemoryStore) DeleteParticipationsByUser(_ context.Context, username string) error {
	defer s.write()()
	for id, names := range s.data.participants {
		kept := names[:0:0]
		for _, name := range names {
			if name != username {
				kept = append(kept, name)
			}
		}
		s.data.participants[id] = kept
	}
	return nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Tickets

func copyTicket(t models.Ticket) models.Ticket {
	t.EventID = copyUUID(t.EventID)
	t.Owner, t.Event = nil, nil
	return t
}

func sortTickets(tickets []models.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].PurchaseDate.Equal(tickets[j].PurchaseDate) {
			return tickets[i].PurchaseDate.Before(tickets[j].PurchaseDate)
		}
		return tickets[i].ID.String() < tickets[j].ID.String()
	})
}

func (s *MemoryStore) FindTicket(_ context.Context, id uuid.UUID) (models.Ticket, error) {
	defer s.read()()
	t, ok := s.data.tickets[id]
	if !ok {
		return models.Ticket{}, apperr.NotFound("ticket", id)
	}
	return copyTicket(t), nil
}

func (s *MemoryStore) CreateTicket(_ context.Context, ticket *models.Ticket) error {
	defer s.write()()
	if err := ticket.BeforeCreate(nil); err != nil {
		return err
	}
	if err := ticket.BeforeSave(nil); err != nil {
		return err
	}
	if err := s.checkUserRef(&ticket.OwnerUsername); err != nil {
		return err
	}
	if ticket.EventID != nil {
		if _, ok := s.data.events[*ticket.EventID]; !ok {
			return apperr.NotFound("event", *ticket.EventID)
		}
	}
	for _, existing := range s.data.tickets {
		if existing.Code == ticket.Code {
			return apperr.Conflict("TicketCodeExists", "ticket code %s already exists", ticket.Code)
		}
	}
	now := s.now()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	s.data.tickets[ticket.ID] = copyTicket(*ticket)
	return nil
}

func (s *MemoryStore) SaveTicket(_ context.Context, ticket *models.Ticket) error {
	defer s.write()()
	existing, ok := s.data.tickets[ticket.ID]
	if !ok {
		return apperr.NotFound("ticket", ticket.ID)
	}
	if err := ticket.BeforeSave(nil); err != nil {
		return err
	}
	if err := s.checkUserRef(&ticket.OwnerUsername); err != nil {
		return err
	}
	existing.OwnerUsername = ticket.OwnerUsername
	existing.EventID = copyUUID(ticket.EventID)
	existing.Price = ticket.Price
	existing.Type = ticket.Type
	existing.UpdatedAt = s.now()
	ticket.UpdatedAt = existing.UpdatedAt
	s.data.tickets[ticket.ID] = existing
	return nil
}

func (s *MemoryStore) DeleteTicket(_ context.Context, id uuid.UUID) error {
	defer s.write()()
	if _, ok := s.data.tickets[id]; !ok {
		return apperr.NotFound("ticket", id)
	}
	delete(s.data.tickets, id)
	return nil
}

func (s *MemoryStore) ListTicketsByOwner(_ context.Context, username string) ([]models.Ticket, error) {
	defer s.read()()
	tickets := []models.Ticket{}
	for _, t := range s.data.tickets {
		if t.OwnerUsername == username {
			tickets = append(tickets, copyTicket(t))
		}
	}
	sortTickets(tickets)
	return tickets, nil
}

func (s *MemoryStore) ListTicketsByEvent(_ context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	defer s.read()()
	tickets := []models.Ticket{}
	for _, t := range s.data.tickets {
		if t.LinkedTo(eventID) {
			tickets = append(tickets, copyTicket(t))
		}
	}
	sortTickets(tickets)
	return tickets, nil
}

func (s *MemoryStore) SetTicketsEvent(_ context.Context, ids []uuid.UUID, eventID *uuid.UUID) error {
	defer s.write()()
	now := s.now()
	for _, id := range ids {
		t, ok := s.data.tickets[id]
		if !ok {
			continue
		}
		t.EventID = copyUUID(eventID)
		t.UpdatedAt = now
		s.data.tickets[id] = t
	}
	return nil
}

func (s *MemoryStore) SetTicketsOwner(_ context.Context, ids []uuid.UUID, username string) error {
	defer s.write()()
	now := s.now()
	for _, id := range ids {
		t, ok := s.data.tickets[id]
		if !ok {
			continue
		}
		t.OwnerUsername = username
		t.UpdatedAt = now
		s.data.tickets[id] = t
	}
	return nil
}

func (s *MemoryStore) DeleteTicketsByOwner(_ context.Context, username string) error {
	defer s.write()()
	for id, t := range s.data.tickets {
		if t.OwnerUsername == username {
			delete(s.data.tickets, id)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteTicketsByEvent(_ context.Context, eventID uuid.UUID) error {
	defer s.write()()
	for id, t := range s.data.tickets {
		if t.LinkedTo(eventID) {
			delete(s.data.tickets, id)
		}
	}
	return nil
}

// Feedback

func (s *MemoryStore) FindFeedback(_ context.Context, id uuid.UUID) (models.Feedback, error) {
	defer s.read()()
	f, ok := s.data.feedback[id]
	if !ok {
		return models.Feedback{}, apperr.NotFound("feedback", id)
	}
	return f, nil
}

func (s *MemoryStore) CreateFeedback(_ context.Context, feedback *models.Feedback) error {
	defer s.write()()
	if err := feedback.BeforeCreate(nil); err != nil {
		return err
	}
	if err := feedback.BeforeSave(nil); err != nil {
		return err
	}
	if err := s.checkUserRef(&feedback.Username); err != nil {
		return err
	}
	if _, ok := s.data.events[feedback.EventID]; !ok {
		return apperr.NotFound("event", feedback.EventID)
	}
	now := s.now()
	feedback.CreatedAt, feedback.UpdatedAt = now, now
	stored := *feedback
	stored.User, stored.Event = nil, nil
	s.data.feedback[feedback.ID] = stored
	return nil
}

func (s *MemoryStore) SaveFeedback(_ context.Context, feedback *models.Feedback) error {
	defer s.write()()
	existing, ok := s.data.feedback[feedback.ID]
	if !ok {
		return apperr.NotFound("feedback", feedback.ID)
	}
	if err := feedback.BeforeSave(nil); err != nil {
		return err
	}
	existing.Username = feedback.Username
	existing.EventID = feedback.EventID
	existing.Rating = feedback.Rating
	existing.Comment = feedback.Comment
	existing.UpdatedAt = s.now()
	feedback.UpdatedAt = existing.UpdatedAt
	s.data.feedback[feedback.ID] = existing
	return nil
}

func (s *MemoryStore) DeleteFeedback(_ context.Context, id uuid.UUID) error {
	defer s.write()()
	if _, ok := s.data.feedback[id]; !ok {
		return apperr.NotFound("feedback", id)
	}
	delete(s.data.feedback, id)
	return nil
}

func (s *MemoryStore) ListFeedbackByEvent(_ context.Context, eventID uuid.UUID) ([]models.Feedback, error) {
	defer s.read()()
	feedback := []models.Feedback{}
	for _, f := range s.data.feedback {
		if f.EventID == eventID {
			feedback = append(feedback, f)
		}
	}
	sort.Slice(feedback, func(i, j int) bool {
		if !feedback[i].FeedbackDate.Equal(feedback[j].FeedbackDate) {
			return feedback[i].FeedbackDate.Before(feedback[j].FeedbackDate)
		}
		return feedback[i].ID.String() < feedback[j].ID.String()
	})
	return feedback, nil
}

func (s *MemoryStore) SetFeedbackEvent(_ context.Context, ids []uuid.UUID, eventID uuid.UUID) error {
	defer s.write()()
	now := s.now()
	for _, id := range ids {
		f, ok := s.data.feedback[id]
		if !ok {
			continue
		}
		f.EventID = eventID
		f.UpdatedAt = now
		s.data.feedback[id] = f
	}
	return nil
}

func (s *MemoryStore) DeleteFeedbackByIDs(_ context.Context, ids []uuid.UUID) error {
	defer s.write()()
	for _, id := range ids {
		delete(s.data.feedback, id)
	}
	return nil
}

func (s *MemoryStore) DeleteFeedbackByUser(_ context.Context, username string) error {
	defer s.write()()
	for id, f := range s.data.feedback {
		if f.Username == username {
			delete(s.data.feedback, id)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteFeedbackByEvent(_ context.Context, eventID uuid.UUID) error {
	defer s.write()()
	for id, f := range s.data.feedback {
		if f.EventID == eventID {
			delete(s.data.feedback, id)
		}
	}
	return nil
}

// Photos

func (s *MemoryStore) FindPhoto(_ context.Context, filename string) (models.UserPhoto, error) {
	defer s.read()()
	p, ok := s.data.photos[filename]
	if !ok {
		return models.UserPhoto{}, apperr.NotFound("photo", filename)
	}
	return p, nil
}

func (s *MemoryStore) CreatePhoto(_ context.Context, photo *models.UserPhoto) error {
	defer s.write()()
	if _, ok := s.data.photos[photo.Filename]; ok {
		return apperr.Conflict("PhotoExists", "photo %s already exists", photo.Filename)
	}
	photo.CreatedAt = s.now()
	s.data.photos[photo.Filename] = *photo
	return nil
}

func (s *MemoryStore) PhotoOwner(_ context.Context, filename string) (string, bool, error) {
	defer s.read()()
	for _, u := range s.data.users {
		if u.PhotoFilename != nil && *u.PhotoFilename == filename {
			return u.Username, true, nil
		}
	}
	return "", false, nil
}

var _ Store = (*MemoryStore)(nil)

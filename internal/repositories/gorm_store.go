package repositories

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormStore(db *gorm.DB, logger *slog.Logger) *GormStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, logger: s.logger})
	})
}

// bulk skips model hooks: they validate whole rows and batch updates only
// carry the changed columns.
func (s *GormStore) bulk(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{SkipHooks: true})
}

// Users

func (s *GormStore) FindUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("role ASC") }).
		First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.NotFound("user", username)
		}
		return models.User{}, s.logError("user_repo_find_failed", err, "username", username)
	}
	return user, nil
}

func (s *GormStore) ListUsers(ctx context.Context, page Page) ([]models.User, int64, error) {
	page = page.Normalize()
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, s.logError("user_repo_count_failed", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("role ASC") }).
		Order("username ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, s.logError("user_repo_list_failed", err)
	}
	return users, total, nil
}

func (s *GormStore) UserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, s.logError("user_repo_exists_failed", err, "username", username)
	}
	return count > 0, nil
}

func (s *GormStore) EmailTaken(ctx context.Context, email, exceptUsername string) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email))
	if exceptUsername != "" {
		tx = tx.Where("username <> ?", exceptUsername)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, s.logError("user_repo_email_taken_failed", err)
	}
	return count > 0, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return userConflict(err)
		}
		return s.logError("user_repo_create_failed", err, "username", user.Username)
	}
	return nil
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	result := s.db.WithContext(ctx).Model(user).
		Select("Email", "Password", "Enabled", "PhotoFilename").
		Updates(user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return userConflict(result.Error)
		}
		return s.logError("user_repo_save_failed", result.Error, "username", user.Username)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user", user.Username)
	}
	return nil
}

func (s *GormStore) DeleteUser(ctx context.Context, username string) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, "username = ?", username)
	if result.Error != nil {
		return s.logError("user_repo_delete_failed", result.Error, "username", username)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user", username)
	}
	return nil
}

func (s *GormStore) AddRoles(ctx context.Context, roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&roles).Error
	if err != nil {
		return s.logError("role_repo_add_failed", err, "username", roles[0].Username)
	}
	return nil
}

func (s *GormStore) RemoveRoles(ctx context.Context, username string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("username = ? AND role IN ?", username, names).
		Delete(&models.Role{}).Error
	if err != nil {
		return s.logError("role_repo_remove_failed", err, "username", username)
	}
	return nil
}

func (s *GormStore) DeleteRolesByUser(ctx context.Context, username string) error {
	if err := s.db.WithContext(ctx).Where("username = ?", username).Delete(&models.Role{}).Error; err != nil {
		return s.logError("role_repo_delete_by_user_failed", err, "username", username)
	}
	return nil
}

// Events

func (s *GormStore) FindEvent(ctx context.Context, id uuid.UUID) (models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Event{}, apperr.NotFound("event", id)
		}
		return models.Event{}, s.logError("event_repo_find_failed", err, "event_id", id.String())
	}
	return event, nil
}

func (s *GormStore) ListEvents(ctx context.Context, filter EventFilter, page Page) ([]models.Event, int64, error) {
	page = page.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Event{})
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}
	if filter.From != nil {
		query = query.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_time <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, s.logError("event_repo_count_failed", err)
	}

	var events []models.Event
	if err := query.
		Order("start_time ASC").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&events).Error; err != nil {
		return nil, 0, s.logError("event_repo_list_failed", err)
	}
	return events, total, nil
}

func (s *GormStore) ListEventIDsByOrganizer(ctx context.Context, username string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("organizer_username = ?", username).
		Pluck("id", &ids).Error; err != nil {
		return nil, s.logError("event_repo_list_by_organizer_failed", err, "username", username)
	}
	return ids, nil
}

func (s *GormStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return s.logError("event_repo_create_failed", err, "name", event.Name)
	}
	return nil
}

func (s *GormStore) SaveEvent(ctx context.Context, event *models.Event) error {
	result := s.db.WithContext(ctx).Model(event).
		Select("OrganizerUsername", "Name", "Location", "StartTime", "EndTime", "Capacity", "Price").
		Updates(event)
	if result.Error != nil {
		return s.logError("event_repo_save_failed", result.Error, "event_id", event.ID.String())
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("event", event.ID)
	}
	return nil
}

func (s *GormStore) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if result.Error != nil {
		return s.logError("event_repo_delete_failed", result.Error, "event_id", id.String())
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("event", id)
	}
	return nil
}

func (s *GormStore) ListParticipants(ctx context.Context, eventID uuid.UUID) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Joins("JOIN event_participants ON event_participants.username = users.username").
		Where("event_participants.event_id = ?", eventID).
		Preload("Roles").
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, s.logError("event_repo_list_participants_failed", err, "event_id", eventID.String())
	}
	return users, nil
}

func (s *GormStore) AddParticipants(ctx context.Context, eventID uuid.UUID, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}
	rows := make([]models.EventParticipant, 0, len(usernames))
	for _, username := range usernames {
		rows = append(rows, models.EventParticipant{EventID: eventID, Username: username})
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return s.logError("event_repo_add_participants_failed", err, "event_id", eventID.String())
	}
	return nil
}

func (s *GormStore) RemoveParticipants(ctx context.Context, eventID uuid.UUID, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Where("event_id = ? AND username IN ?", eventID, usernames).
		Delete(&models.EventParticipant{}).Error; err != nil {
		return s.logError("event_repo_remove_participants_failed", err, "event_id", eventID.String())
	}
	return nil
}

func (s *GormStore) DeleteParticipationsByEvent(ctx context.Context, eventID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.EventParticipant{}).Error; err != nil {
		return s.logError("event_repo_delete_participations_failed", err, "event_id", eventID.String())
	}
	return nil
}

func (s *GormStore) DeleteParticipationsByUser(ctx context.Context, username string) error {
	if err := s.db.WithContext(ctx).Where("username = ?", username).Delete(&models.EventParticipant{}).Error; err != nil {
		return s.logError("event_repo_delete_participations_failed", err, "username", username)
	}
	return nil
}

// Tickets

func (s *GormStore) FindTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ticket{}, apperr.NotFound("ticket", id)
		}
		return models.Ticket{}, s.logError("ticket_repo_find_failed", err, "ticket_id", id.String())
	}
	return ticket, nil
}

func (s *GormStore) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(ticket).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("TicketCodeExists", "ticket code %s already exists", ticket.Code)
		}
		return s.logError("ticket_repo_create_failed", err, "owner", ticket.OwnerUsername)
	}
	return nil
}

func (s *GormStore) SaveTicket(ctx context.Context, ticket *models.Ticket) error {
	result := s.db.WithContext(ctx).Model(ticket).
		Select("OwnerUsername", "EventID", "Price", "Type").
		Updates(ticket)
	if result.Error != nil {
		return s.logError("ticket_repo_save_failed", result.Error, "ticket_id", ticket.ID.String())
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("ticket", ticket.ID)
	}
	return nil
}

func (s *GormStore) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Ticket{}, "id = ?", id)
	if result.Error != nil {
		return s.logError("ticket_repo_delete_failed", result.Error, "ticket_id", id.String())
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("ticket", id)
	}
	return nil
}

func (s *GormStore) ListTicketsByOwner(ctx context.Context, username string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.WithContext(ctx).
		Where("owner_username = ?", username).
		Order("purchase_date ASC").
		Order("id ASC").
		Find(&tickets).Error; err != nil {
		return nil, s.logError("ticket_repo_list_by_owner_failed", err, "username", username)
	}
	return tickets, nil
}

func (s *GormStore) ListTicketsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("purchase_date ASC").
		Order("id ASC").
		Find(&tickets).Error; err != nil {
		return nil, s.logError("ticket_repo_list_by_event_failed", err, "event_id", eventID.String())
	}
	return tickets, nil
}

func (s *GormStore) SetTicketsEvent(ctx context.Context, ids []uuid.UUID, eventID *uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var value any = gorm.Expr("NULL")
	if eventID != nil {
		value = *eventID
	}
	if err := s.bulk(ctx).Model(&models.Ticket{}).
		Where("id IN ?", ids).
		Update("event_id", value).Error; err != nil {
		return s.logError("ticket_repo_set_event_failed", err)
	}
	return nil
}

func (s *GormStore) SetTicketsOwner(ctx context.Context, ids []uuid.UUID, username string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.bulk(ctx).Model(&models.Ticket{}).
		Where("id IN ?", ids).
		Update("owner_username", username).Error; err != nil {
		return s.logError("ticket_repo_set_owner_failed", err, "username", username)
	}
	return nil
}

func (s *GormStore) DeleteTicketsByOwner(ctx context.Context, username string) error {
	if err := s.db.WithContext(ctx).Where("owner_username = ?", username).Delete(&models.Ticket{}).Error; err != nil {
		return s.logError("ticket_repo_delete_by_owner_failed", err, "username", username)
	}
	return nil
}

func (s *GormStore) DeleteTicketsByEvent(ctx context.Context, eventID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Ticket{}).Error; err != nil {
		return s.logError("ticket_repo_delete_by_event_failed", err, "event_id", eventID.String())
	}
	return nil
}

// Feedback

func (s *GormStore) FindFeedback(ctx context.Context, id uuid.UUID) (models.Feedback, error) {
	var feedback models.Feedback
	if err := s.db.WithContext(ctx).First(&feedback, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Feedback{}, apperr.NotFound("feedback", id)
		}
		return models.Feedback{}, s.logError("feedback_repo_find_failed", err, "feedback_id", id.String())
	}
	return feedback, nil
}

func (s *GormStore) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(feedback).Error; err != nil {
		return s.logError("feedback_repo_create_failed", err, "username", feedback.Username)
	}
	return nil
}

func (s *GormStore) SaveFeedback(ctx context.Context, feedback *models.Feedback) error {
	result := s.db.WithContext(ctx).Model(feedback).
		Select("Username", "EventID", "Rating", "Comment").
		Updates(feedback)
	if result.Error != nil {
		return s.logError("feedback_repo_save_failed", result.Error, "feedback_id", feedback.ID.String())
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("feedback", feedback.ID)
	}
	return nil
}

func (s *GormStore) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Feedback{}, "id = ?", id)
	if result.Error != nil {
		return s.logError("feedback_repo_delete_failed", result.Error, "feedback_id", id.String())
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("feedback", id)
	}
	return nil
}

func (s *GormStore) ListFeedbackByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error) {
	var feedback []models.Feedback
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("feedback_date ASC").
		Order("id ASC").
		Find(&feedback).Error; err != nil {
		return nil, s.logError("feedback_repo_list_by_event_failed", err, "event_id", eventID.String())
	}
	return feedback, nil
}

func (s *GormStore) SetFeedbackEvent(ctx context.Context, ids []uuid.UUID, eventID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.bulk(ctx).Model(&models.Feedback{}).
		Where("id IN ?", ids).
		Update("event_id", eventID).Error; err != nil {
		return s.logError("feedback_repo_set_event_failed", err, "event_id", eventID.String())
	}
	return nil
}

func (s *GormStore) DeleteFeedbackByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Feedback{}).Error; err != nil {
		return s.logError("feedback_repo_delete_by_ids_failed", err)
	}
	return nil
}

func (s *GormStore) DeleteFeedbackByUser(ctx context.Context, username string) error {
	if err := s.db.WithContext(ctx).Where("username = ?", username).Delete(&models.Feedback{}).Error; err != nil {
		return s.logError("feedback_repo_delete_by_user_failed", err, "username", username)
	}
	return nil
}

func (s *GormStore) DeleteFeedbackByEvent(ctx context.Context, eventID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Feedback{}).Error; err != nil {
		return s.logError("feedback_repo_delete_by_event_failed", err, "event_id", eventID.String())
	}
	return nil
}

// Photos

func (s *GormStore) FindPhoto(ctx context.Context, filename string) (models.UserPhoto, error) {
	var photo models.UserPhoto
	if err := s.db.WithContext(ctx).First(&photo, "filename = ?", filename).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UserPhoto{}, apperr.NotFound("photo", filename)
		}
		return models.UserPhoto{}, s.logError("photo_repo_find_failed", err, "filename", filename)
	}
	return photo, nil
}

func (s *GormStore) CreatePhoto(ctx context.Context, photo *models.UserPhoto) error {
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("PhotoExists", "photo %s already exists", photo.Filename)
		}
		return s.logError("photo_repo_create_failed", err, "filename", photo.Filename)
	}
	return nil
}

func (s *GormStore) PhotoOwner(ctx context.Context, filename string) (string, bool, error) {
	var usernames []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("photo_filename = ?", filename).
		Limit(1).
		Pluck("username", &usernames).Error; err != nil {
		return "", false, s.logError("photo_repo_owner_failed", err, "filename", filename)
	}
	if len(usernames) == 0 {
		return "", false, nil
	}
	return usernames[0], true, nil
}

func (s *GormStore) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"layer", "repository",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// userConflict names the violated constraint: the email unique index or
// the username primary key.
func userConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return apperr.Conflict(apperr.ErrEmailAlreadyExists.Code, "email already exists")
		case strings.Contains(pgErr.ConstraintName, "photo"):
			return apperr.Conflict(apperr.ErrPhotoAlreadyAssigned.Code, "photo is already assigned to another user")
		}
	}
	return apperr.Conflict(apperr.ErrUsernameAlreadyExists.Code, "username already exists")
}

var _ Store = (*GormStore)(nil)

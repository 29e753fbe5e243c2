package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/google/uuid"
)

// PhotoStorage persists uploaded photo bytes. Save validates the content
// and returns the generated filename with its sniffed content type.
type PhotoStorage interface {
	Save(r io.ReadSeeker, size int64) (filename, contentType string, err error)
	Remove(filename string) error
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Enabled  bool
	Roles    []string
}

type UpdateUserInput struct {
	Email string
	// Password is re-hashed when non-empty and left unchanged otherwise.
	Password string
	Enabled  bool
}

type UserService struct {
	store  repositories.Store
	hasher *auth.PasswordHasher
	photos PhotoStorage
	logger *slog.Logger
}

func NewUserService(store repositories.Store, hasher *auth.PasswordHasher, photos PhotoStorage, logger *slog.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, photos: photos, logger: resolveLogger(logger)}
}

func validateRoleNames(names []string) error {
	for _, name := range names {
		if !models.IsValidRoleName(name) {
			return apperr.InvalidArgument("role %q must start with %s", name, models.RolePrefix)
		}
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := models.NormalizeEmail(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return models.User{}, apperr.InvalidArgument("username, email and password are required")
	}
	if !models.IsValidUsername(username) {
		return models.User{}, apperr.InvalidArgument("username %q may only contain letters, digits, '.', '_' and '-'", username)
	}
	roles := dedupe(input.Roles)
	if len(roles) == 0 {
		roles = []string{string(auth.AuthorityParticipant)}
	}
	if err := validateRoleNames(roles); err != nil {
		return models.User{}, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	var created models.User
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		exists, err := tx.UserExists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict(apperr.ErrUsernameAlreadyExists.Code, "username %s already exists", username)
		}
		taken, err := tx.EmailTaken(ctx, email, "")
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(apperr.ErrEmailAlreadyExists.Code, "email %s already exists", email)
		}

		user := models.User{Username: username, Email: email, Password: hashed, Enabled: input.Enabled}
		if err := tx.CreateUser(ctx, &user); err != nil {
			return err
		}
		if err := tx.AddRoles(ctx, newRoles(username, roles)); err != nil {
			return err
		}
		created, err = tx.FindUser(ctx, username)
		return err
	})
	return created, err
}

func newRoles(username string, names []string) []models.Role {
	roles := make([]models.Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, models.Role{Username: username, Name: name})
	}
	return roles
}

func (s *UserService) Get(ctx context.Context, username string) (models.User, error) {
	return s.store.FindUser(ctx, username)
}

func (s *UserService) List(ctx context.Context, page repositories.Page) ([]models.User, int64, error) {
	return s.store.ListUsers(ctx, page)
}

func (s *UserService) Update(ctx context.Context, username string, input UpdateUserInput) (models.User, error) {
	email := models.NormalizeEmail(input.Email)
	if email == "" {
		return models.User{}, apperr.InvalidArgument("email is required")
	}
	var hashed string
	if input.Password != "" {
		var err error
		if hashed, err = s.hasher.Hash(input.Password); err != nil {
			return models.User{}, err
		}
	}

	var updated models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		taken, err := tx.EmailTaken(ctx, email, username)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(apperr.ErrEmailAlreadyExists.Code, "email %s already exists", email)
		}
		user.Email = email
		user.Enabled = input.Enabled
		if hashed != "" {
			user.Password = hashed
		}
		if err := tx.SaveUser(ctx, &user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	return updated, err
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindUser(ctx, username); err != nil {
			return err
		}
		return deleteUserCascade(ctx, tx, username)
	})
	if err == nil {
		s.logger.Info("user deleted", "username", username)
	}
	return err
}

// AddRoles grants roles; roles already held are skipped.
func (s *UserService) AddRoles(ctx context.Context, username string, names []string) (models.User, error) {
	if err := requireNonEmpty("roles", names); err != nil {
		return models.User{}, err
	}
	if err := validateRoleNames(names); err != nil {
		return models.User{}, err
	}

	var updated models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		var missing []string
		for _, name := range dedupe(names) {
			if !user.HasRole(name) {
				missing = append(missing, name)
			}
		}
		if err := tx.AddRoles(ctx, newRoles(username, missing)); err != nil {
			return err
		}
		updated, err = tx.FindUser(ctx, username)
		return err
	})
	return updated, err
}

// RemoveRoles revokes roles; every role must currently be held.
func (s *UserService) RemoveRoles(ctx context.Context, username string, names []string) (models.User, error) {
	if err := requireNonEmpty("roles", names); err != nil {
		return models.User{}, err
	}
	if err := validateRoleNames(names); err != nil {
		return models.User{}, err
	}

	var updated models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		names = dedupe(names)
		for _, name := range names {
			if !user.HasRole(name) {
				return apperr.IllegalState("user %s does not have role %s", username, name)
			}
		}
		if err := tx.RemoveRoles(ctx, username, names); err != nil {
			return err
		}
		updated, err = tx.FindUser(ctx, username)
		return err
	})
	return updated, err
}

// AssignTickets transfers ownership of existing tickets to the user.
func (s *UserService) AssignTickets(ctx context.Context, username string, ticketIDs []uuid.UUID) ([]models.Ticket, error) {
	if err := requireNonEmpty("ticket_ids", ticketIDs); err != nil {
		return nil, err
	}

	var tickets []models.Ticket
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindUser(ctx, username); err != nil {
			return err
		}
		var transfer []uuid.UUID
		for _, id := range dedupe(ticketIDs) {
			ticket, err := tx.FindTicket(ctx, id)
			if err != nil {
				return err
			}
			if ticket.OwnerUsername != username {
				transfer = append(transfer, id)
			}
		}
		if err := tx.SetTicketsOwner(ctx, transfer, username); err != nil {
			return err
		}
		var err error
		tickets, err = tx.ListTicketsByOwner(ctx, username)
		return err
	})
	return tickets, err
}

// AssignPhoto points the user at an existing photo record. A photo can be
// referenced by one user at a time.
func (s *UserService) AssignPhoto(ctx context.Context, username, filename string) (models.User, error) {
	if strings.TrimSpace(filename) == "" {
		return models.User{}, apperr.InvalidArgument("filename is required")
	}

	var updated models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		if _, err := tx.FindPhoto(ctx, filename); err != nil {
			return err
		}
		owner, assigned, err := tx.PhotoOwner(ctx, filename)
		if err != nil {
			return err
		}
		if assigned && owner != username {
			return apperr.Conflict(apperr.ErrPhotoAlreadyAssigned.Code, "photo %s is already assigned to another user", filename)
		}
		if assigned {
			updated = user
			return nil
		}
		user.PhotoFilename = &filename
		if err := tx.SaveUser(ctx, &user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	return updated, err
}

// UploadPhoto stores the file, records it and assigns it to the user. The
// stored file is removed again when the database work fails.
func (s *UserService) UploadPhoto(ctx context.Context, username string, file io.ReadSeeker, size int64) (models.User, error) {
	if s.photos == nil {
		return models.User{}, errors.New("photo storage is not configured")
	}
	if _, err := s.store.FindUser(ctx, username); err != nil {
		return models.User{}, err
	}

	filename, contentType, err := s.photos.Save(file, size)
	if err != nil {
		return models.User{}, err
	}

	var updated models.User
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		photo := models.UserPhoto{Filename: filename, ContentType: contentType, Size: size}
		if err := tx.CreatePhoto(ctx, &photo); err != nil {
			return err
		}
		user.PhotoFilename = &photo.Filename
		if err := tx.SaveUser(ctx, &user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if rmErr := s.photos.Remove(filename); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "filename", filename, "error", rmErr)
		}
		return models.User{}, err
	}
	return updated, nil
}

func (s *UserService) GetPhoto(ctx context.Context, username string) (models.UserPhoto, error) {
	var photo models.UserPhoto
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		if user.PhotoFilename == nil {
			return apperr.NotFound("photo for user", username)
		}
		photo, err = tx.FindPhoto(ctx, *user.PhotoFilename)
		return err
	})
	return photo, err
}

// RemovePhoto unlinks the user's photo. The photo record itself is kept.
func (s *UserService) RemovePhoto(ctx context.Context, username string) (models.User, error) {
	var updated models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		if user.PhotoFilename == nil {
			return apperr.IllegalState("user %s has no photo", username)
		}
		user.PhotoFilename = nil
		if err := tx.SaveUser(ctx, &user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	return updated, err
}

type AdminInput struct {
	Username string
	Email    string
	Password string
}

// EnsureAdmin creates the bootstrap administrator, or grants ROLE_ADMIN to
// an existing user of that name. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, input AdminInput) (bool, error) {
	exists, err := s.store.UserExists(ctx, input.Username)
	if err != nil {
		return false, err
	}
	if exists {
		_, err := s.AddRoles(ctx, input.Username, []string{string(auth.AuthorityAdmin)})
		return false, err
	}
	_, err = s.Create(ctx, CreateUserInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Enabled:  true,
		Roles:    []string{string(auth.AuthorityAdmin)},
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("admin user created", "username", input.Username)
	return true, nil
}

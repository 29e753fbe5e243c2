package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/farellandr/eventhub/config"
	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/dto"
	"github.com/farellandr/eventhub/internal/handlers"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	APIPrefix       = "/api/v1"
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	router *gin.Engine
	users  *services.UserService
}

// New wires the services on top of store and builds the router. pinger is
// used by /health and may be nil.
func New(cfg *config.Config, store repositories.Store, pinger handlers.Pinger, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTTTL, auth.WithIssuer("eventhub"))
	if err != nil {
		return nil, err
	}

	uploadConfig := helpers.DefaultImageUploadConfig
	uploadConfig.MaxSizeBytes = cfg.MaxUploadBytes()
	uploadConfig.UploadBasePath = cfg.UploadDir
	photos, err := helpers.NewFileStorage("user_photos", uploadConfig)
	if err != nil {
		return nil, err
	}

	authService, err := services.NewAuthService(store, hasher, tokens)
	if err != nil {
		return nil, err
	}
	users := services.NewUserService(store, hasher, photos, logger)

	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	r.Use(middleware.Authenticate(tokens), middleware.Authorize(auth.DefaultPolicy(APIPrefix)))

	setupRoutes(r, routeHandlers{
		health:   handlers.NewHealthHandler(pinger),
		auth:     handlers.NewAuthHandler(authService),
		users:    handlers.NewUserHandler(users),
		photos:   handlers.NewPhotoHandler(users, photos),
		tickets:  handlers.NewTicketHandler(services.NewTicketService(store)),
		events:   handlers.NewEventHandler(services.NewEventService(store, logger)),
		feedback: handlers.NewFeedbackHandler(services.NewFeedbackService(store)),
	})

	return &Server{cfg: cfg, logger: logger, router: r, users: users}, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "WWW-Authenticate"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

type routeHandlers struct {
	health   *handlers.HealthHandler
	auth     *handlers.AuthHandler
	users    *handlers.UserHandler
	photos   *handlers.PhotoHandler
	tickets  *handlers.TicketHandler
	events   *handlers.EventHandler
	feedback *handlers.FeedbackHandler
}

func setupRoutes(r *gin.Engine, h routeHandlers) {
	r.GET("/health", h.health.Health)

	api := r.Group(APIPrefix)
	{
		api.POST("/authenticate", h.auth.Authenticate)
		api.GET("/authenticated", h.auth.Authenticated)

		users := api.Group("/users")
		{
			users.POST("", h.users.CreateUser)
			users.GET("", h.users.ListUsers)
			users.GET("/:username", h.users.GetUser)
			users.PUT("/:username", h.users.UpdateUser)
			users.DELETE("/:username", h.users.DeleteUser)

			users.POST("/:username/roles", h.users.AddRoles)
			users.DELETE("/:username/roles", h.users.RemoveRoles)

			users.POST("/:username/tickets", h.tickets.CreateTicket)
			users.GET("/:username/tickets", h.tickets.ListTickets)
			users.PUT("/:username/tickets", h.users.AssignTickets)
			users.GET("/:username/tickets/:ticketId", h.tickets.GetTicket)
			users.PUT("/:username/tickets/:ticketId", h.tickets.UpdateTicket)
			users.DELETE("/:username/tickets/:ticketId", h.tickets.DeleteTicket)

			users.POST("/:username/photo", h.photos.UploadPhoto)
			users.PUT("/:username/photo", h.photos.AssignPhoto)
			users.GET("/:username/photo", h.photos.GetPhoto)
			users.DELETE("/:username/photo", h.photos.RemovePhoto)
		}

		events := api.Group("/events")
		{
			events.POST("", h.events.CreateEvent)
			events.GET("", h.events.ListEvents)
			events.GET("/:id", h.events.GetEvent)
			events.PUT("/:id", h.events.UpdateEvent)
			events.DELETE("/:id", h.events.DeleteEvent)

			events.PUT("/:id/organizer", h.events.SetOrganizer)
			events.DELETE("/:id/organizer", h.events.RemoveOrganizer)

			events.POST("/:id/participants", h.events.AddParticipants)
			events.DELETE("/:id/participants", h.events.RemoveParticipants)
			events.GET("/:id/participants", h.events.ListParticipants)

			events.POST("/:id/tickets", h.events.AssignTickets)
			events.DELETE("/:id/tickets", h.events.RemoveTickets)
			events.GET("/:id/tickets", h.events.ListTickets)

			events.POST("/:id/feedback", h.feedback.CreateFeedback)
			events.PUT("/:id/feedback", h.events.AssignFeedback)
			events.DELETE("/:id/feedback", h.events.RemoveFeedback)
			events.GET("/:id/feedback", h.events.ListFeedback)
			events.GET("/:id/feedback/:feedbackId", h.feedback.GetFeedback)
			events.PUT("/:id/feedback/:feedbackId", h.feedback.UpdateFeedback)
			events.DELETE("/:id/feedback/:feedbackId", h.feedback.DeleteFeedback)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		helpers.RespondWithError(c, http.StatusNotFound, "Resource not found.")
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// SeedAdmin creates the configured administrator. It is a no-op when no
// admin password is configured.
func (s *Server) SeedAdmin(ctx context.Context) error {
	admin := s.cfg.Admin
	if admin.Password == "" {
		return nil
	}
	created, err := s.users.EnsureAdmin(ctx, services.AdminInput{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if !created {
		s.logger.Info("admin user already present", "username", admin.Username)
	}
	return nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/dates"
	"example.com/exercisetracker/internal/domain"
)

// Option configures a Handler.
type Option func(*Handler)

// WithErrorStatusCodes makes failures respond 400, 404 or 500 instead of 200.
func WithErrorStatusCodes(enabled bool) Option {
	return func(h *Handler) {
		h.statusCodes = enabled
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service     *domain.Service
	statusCodes bool
	logger      zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, opts ...Option) *Handler {
	h := &Handler{service: service, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires the API endpoints to e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	users := e.Group("/api/users")
	users.POST("", h.createUser)
	users.GET("", h.listUsers)
	users.POST("/:id/exercises", h.addExercise)
	users.GET("/:id/logs", h.getLog)
}

// UserView is the JSON shape of a user.
type UserView struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// ExerciseView is the response body of a recorded exercise. ID and Username
// belong to the owning user.
type ExerciseView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogEntryView is one exercise inside a log response.
type LogEntryView struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogView is the response body of a log query.
type LogView struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Count    int            `json:"count"`
	Log      []LogEntryView `json:"log"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) createUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindBody(c, &req); err != nil {
		return h.writeBindError(c)
	}

	user, err := h.service.CreateUser(c.Request().Context(), domain.CreateUserInput{Username: req.Username})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserView(user))
}

func (h *Handler) listUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) addExercise(c echo.Context) error {
	var req AddExerciseRequest
	if err := bindBody(c, &req); err != nil {
		return h.writeBindError(c)
	}

	user, exercise, err := h.service.AddExercise(c.Request().Context(), domain.AddExerciseInput{
		UserID:      c.Param("id"),
		Description: req.Description,
		Duration:    string(req.Duration),
		Date:        req.Date,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, ExerciseView{
		ID:          user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        dates.RenderCalendarDate(exercise.Date),
	})
}

func (h *Handler) getLog(c echo.Context) error {
	var req LogQueryRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return h.writeBindError(c)
	}

	log, err := h.service.GetLog(c.Request().Context(), domain.LogQueryInput{
		UserID: c.Param("id"),
		From:   req.From,
		To:     req.To,
		Limit:  req.Limit,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	entries := make([]LogEntryView, 0, len(log.Exercises))
	for _, exercise := range log.Exercises {
		entries = append(entries, LogEntryView{
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Date:        dates.RenderCalendarDate(exercise.Date),
		})
	}

	return c.JSON(http.StatusOK, LogView{
		ID:       log.User.ID,
		Username: log.User.Username,
		Count:    log.Count,
		Log:      entries,
	})
}

func (h *Handler) writeBindError(c echo.Context) error {
	return h.respondError(c, http.StatusBadRequest, "Invalid request body")
}

// writeError converts a service failure into the error body. Store failures
// are logged with their cause; the client only sees the generic message.
func (h *Handler) writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		event := h.logger.Error().
			Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("route", c.Path())
		if domainErr != nil && domainErr.Op != "" {
			event = event.Str("operation", domainErr.Op)
		}
		event.Msg("store operation failed")
	}

	return h.respondError(c, status, message)
}

func (h *Handler) respondError(c echo.Context, status int, message string) error {
	if !h.statusCodes {
		status = http.StatusOK
	}
	return c.JSON(status, errorResponse{Error: message})
}

func toUserView(user domain.User) UserView {
	return UserView{Username: user.Username, ID: user.ID}
}

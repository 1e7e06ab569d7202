// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/dates"
	"example.com/exercisetracker/internal/observability"
)

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLogger overrides the logger used for best-effort side effects.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher announces every recorded exercise through p.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithClock replaces the wall clock used to resolve a missing exercise date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service orchestrates user registration, exercise recording and log queries.
type Service struct {
	repo   Repository
	events EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new user.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	input.normalize()
	if err := check(&input); err != nil {
		return User{}, err
	}

	user, err := s.repo.CreateUser(ctx, input.Username)
	if err != nil {
		return User{}, s.storeFailure("create_user", "Failed to create user", err)
	}

	observability.RecordUserCreated()
	return user, nil
}

// ListUsers returns every registered user.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, s.storeFailure("list_users", "Failed to fetch users", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// AddExercise validates input and appends an exercise to the user's log.
func (s *Service) AddExercise(ctx context.Context, input AddExerciseInput) (User, Exercise, error) {
	input.normalize()

	user, err := s.lookupUser(ctx, input.UserID, "add_exercise", "Failed to add exercise")
	if err != nil {
		return User{}, Exercise{}, err
	}

	if err := check(&input); err != nil {
		return User{}, Exercise{}, err
	}

	duration, err := strconv.Atoi(input.Duration)
	if err != nil || duration <= 0 || duration > math.MaxInt32 {
		return User{}, Exercise{}, validationError("Duration must be a positive number of minutes")
	}

	day := dates.Today(s.now())
	if input.Date != "" {
		day, err = dates.ParseCalendarDate(input.Date)
		if err != nil {
			return User{}, Exercise{}, validationError(fieldMessages["Date.datetime"])
		}
	}

	exercise, err := s.repo.InsertExercise(ctx, Exercise{
		UserID:      user.ID,
		Description: input.Description,
		Duration:    duration,
		Date:        day,
	})
	if err != nil {
		return User{}, Exercise{}, s.storeFailure("add_exercise", "Failed to add exercise", err)
	}

	observability.RecordExerciseRecorded(exercise.CreatedAt)
	s.publish(ctx, *user, exercise)
	return *user, exercise, nil
}

// GetLog returns the user's exercises narrowed by the optional date range and
// limit, together with the user's unfiltered exercise count.
func (s *Service) GetLog(ctx context.Context, input LogQueryInput) (ExerciseLog, error) {
	input.normalize()

	user, err := s.lookupUser(ctx, input.UserID, "get_log", "Failed to fetch exercise log")
	if err != nil {
		return ExerciseLog{}, err
	}

	query, err := buildQuery(input)
	if err != nil {
		return ExerciseLog{}, err
	}

	exercises, err := s.repo.QueryExercises(ctx, user.ID, query)
	if err != nil {
		return ExerciseLog{}, s.storeFailure("get_log", "Failed to fetch exercise log", err)
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	count, err := s.repo.CountExercises(ctx, user.ID)
	if err != nil {
		return ExerciseLog{}, s.storeFailure("get_log", "Failed to fetch exercise log", err)
	}

	observability.RecordLogQuery()
	return ExerciseLog{User: *user, Count: count, Exercises: exercises}, nil
}

func buildQuery(input LogQueryInput) (ExerciseQuery, error) {
	if err := check(&input); err != nil {
		return ExerciseQuery{}, err
	}

	var query ExerciseQuery
	if input.From != "" {
		day, err := dates.ParseCalendarDate(input.From)
		if err != nil {
			return ExerciseQuery{}, validationError(fieldMessages["From.datetime"])
		}
		from := dates.StartOfDay(day)
		query.From = &from
	}
	if input.To != "" {
		day, err := dates.ParseCalendarDate(input.To)
		if err != nil {
			return ExerciseQuery{}, validationError(fieldMessages["To.datetime"])
		}
		to := dates.EndOfDay(day)
		query.To = &to
	}

	// A limit that is not a positive integer is ignored rather than rejected.
	if limit, err := strconv.Atoi(input.Limit); err == nil && limit > 0 {
		query.Limit = limit
	}
	return query, nil
}

func (s *Service) lookupUser(ctx context.Context, id, op, failure string) (*User, error) {
	if id == "" || !s.repo.ValidID(id) {
		return nil, &Error{Kind: ErrInvalidID, Message: "Invalid user id"}
	}

	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &Error{Kind: ErrNotFound, Message: "User not found"}
		}
		return nil, s.storeFailure(op, failure, err)
	}
	if user == nil {
		return nil, &Error{Kind: ErrNotFound, Message: "User not found"}
	}
	return user, nil
}

func (s *Service) storeFailure(op, message string, cause error) error {
	observability.RecordStoreError(op)
	return storeError(op, message, cause)
}

func (s *Service) publish(ctx context.Context, user User, exercise Exercise) {
	if s.events == nil {
		return
	}
	if err := s.events.ExerciseRecorded(ctx, user, exercise); err != nil {
		observability.RecordPublishFailure()
		s.logger.Warn().
			Err(err).
			Str("user_id", user.ID).
			Str("exercise_id", exercise.ID).
			Msg("exercise event not published")
	}
}

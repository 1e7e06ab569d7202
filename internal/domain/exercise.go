package domain

import (
	"context"
	"time"
)

// User is a registered account that exercises are logged against.
type User struct {
	ID       string
	Username string
}

// Exercise is a single timed entry. Date holds a calendar day anchored at
// 12:00:00 UTC.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    int
	Date        time.Time
	CreatedAt   time.Time
}

// ExerciseQuery narrows a user's exercises. Nil bounds are open; both bounds
// are inclusive. Limit <= 0 means no limit.
type ExerciseQuery struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// ExerciseLog is the result of a log query. Count is the user's total number
// of exercises and does not depend on the query that produced Exercises.
type ExerciseLog struct {
	User      User
	Count     int
	Exercises []Exercise
}

// Repository captures persistence operations.
type Repository interface {
	// ValidID reports whether id is well-formed for this store.
	ValidID(id string) bool
	CreateUser(ctx context.Context, username string) (User, error)
	// FindUserByID returns ErrNotFound when no user has the id.
	FindUserByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	InsertExercise(ctx context.Context, exercise Exercise) (Exercise, error)
	// QueryExercises returns matching exercises ordered by ascending date.
	QueryExercises(ctx context.Context, userID string, query ExerciseQuery) ([]Exercise, error)
	CountExercises(ctx context.Context, userID string) (int, error)
	// Reset removes every user and exercise.
	Reset(ctx context.Context) error
}

// EventPublisher announces recorded exercises to downstream consumers.
type EventPublisher interface {
	ExerciseRecorded(ctx context.Context, user User, exercise Exercise) error
}

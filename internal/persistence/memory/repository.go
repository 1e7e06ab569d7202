// Package memory keeps users and exercises in process memory for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/exercisetracker/internal/domain"
)

// Repository stores users and exercises in maps guarded by a RWMutex.
type Repository struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	order     []string
	exercises map[string][]domain.Exercise
	now       func() time.Time
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{
		users:     make(map[string]domain.User),
		exercises: make(map[string][]domain.Exercise),
		now:       time.Now,
	}
}

// ValidID implements domain.Repository. Only the canonical lower-case
// hyphenated UUID form is accepted since ids are matched as map keys.
func (r *Repository) ValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// CreateUser implements domain.Repository.
func (r *Repository) CreateUser(ctx context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := domain.User{ID: uuid.NewString(), Username: username}
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)
	return user, nil
}

// FindUserByID implements domain.Repository.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

// ListUsers returns users in registration order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users, nil
}

// InsertExercise implements domain.Repository.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = uuid.NewString()
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = r.now().UTC()
	}
	r.exercises[exercise.UserID] = append(r.exercises[exercise.UserID], exercise)
	return exercise, nil
}

// QueryExercises filters in memory; ties on date keep insertion order.
func (r *Repository) QueryExercises(ctx context.Context, userID string, query domain.ExerciseQuery) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.Exercise, 0, len(r.exercises[userID]))
	for _, exercise := range r.exercises[userID] {
		if query.From != nil && exercise.Date.Before(*query.From) {
			continue
		}
		if query.To != nil && exercise.Date.After(*query.To) {
			continue
		}
		results = append(results, exercise)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.Before(results[j].Date)
	})

	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}
	return results, nil
}

// CountExercises implements domain.Repository.
func (r *Repository) CountExercises(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.exercises[userID]), nil
}

// Reset implements domain.Repository.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]domain.User)
	r.order = nil
	r.exercises = make(map[string][]domain.Exercise)
	return nil
}

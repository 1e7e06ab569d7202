package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"example.com/exercisetracker/internal/domain"
)

// Repository provides Postgres-backed persistence for users and exercises.
type Repository struct {
	db DBTX
}

// NewRepository constructs a Repository on a pool or transaction.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// ValidID reports whether id is a UUID in canonical lower-case hyphenated
// form, the only spelling the uuid column hands back.
func (r *Repository) ValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// CreateUser inserts a user and returns it with the generated id.
func (r *Repository) CreateUser(ctx context.Context, username string) (domain.User, error) {
	const query = `INSERT INTO users (username) VALUES ($1) RETURNING id`

	user := domain.User{Username: username}
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID); err != nil {
		return domain.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// FindUserByID returns domain.ErrNotFound when no row matches.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, username FROM users WHERE id = $1`

	var user domain.User
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

// ListUsers returns users in registration order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT id, username FROM users ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// InsertExercise stores exercise and fills in its id and creation time.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	const query = `INSERT INTO exercises (user_id, description, duration, date)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
	).Scan(&exercise.ID, &exercise.CreatedAt)
	if err != nil {
		return domain.Exercise{}, fmt.Errorf("db error: %w", err)
	}
	exercise.CreatedAt = exercise.CreatedAt.UTC()
	return exercise, nil
}

// QueryExercises returns the user's exercises matching query, oldest first.
func (r *Repository) QueryExercises(ctx context.Context, userID string, query domain.ExerciseQuery) ([]domain.Exercise, error) {
	stmt, args := buildLogQuery(userID, query)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	exercises := make([]domain.Exercise, 0)
	for rows.Next() {
		var exercise domain.Exercise
		if err := rows.Scan(
			&exercise.ID,
			&exercise.UserID,
			&exercise.Description,
			&exercise.Duration,
			&exercise.Date,
			&exercise.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		exercise.Date = exercise.Date.UTC()
		exercise.CreatedAt = exercise.CreatedAt.UTC()
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return exercises, nil
}

// CountExercises returns the user's total number of exercises.
func (r *Repository) CountExercises(ctx context.Context, userID string) (int, error) {
	const query = `SELECT count(*) FROM exercises WHERE user_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

// Reset removes every exercise and user.
func (r *Repository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE exercises, users`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// buildLogQuery renders the SELECT for a log request. Bounds are inclusive
// and seq breaks ties between exercises on the same day.
func buildLogQuery(userID string, query domain.ExerciseQuery) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = $1`)
	args := []any{userID}

	if query.From != nil {
		args = append(args, *query.From)
		fmt.Fprintf(&b, ` AND date >= $%d`, len(args))
	}
	if query.To != nil {
		args = append(args, *query.To)
		fmt.Fprintf(&b, ` AND date <= $%d`, len(args))
	}

	b.WriteString(` ORDER BY date, seq`)

	if query.Limit > 0 {
		args = append(args, query.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	return b.String(), args
}

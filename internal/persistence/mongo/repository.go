// Package mongo stores users and exercises in MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"example.com/exercisetracker/internal/domain"
)

const (
	usersCollection     = "users"
	exercisesCollection = "exercises"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId"`
	Description string             `bson:"description"`
	Duration    int                `bson:"duration"`
	Date        time.Time          `bson:"date"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d exerciseDocument) toDomain() domain.Exercise {
	return domain.Exercise{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Description: d.Description,
		Duration:    d.Duration,
		Date:        d.Date.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri string, timeout time.Duration, logger zerolog.Logger) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info().Msg("connected to mongo")
	return client, nil
}

// Repository provides MongoDB-backed persistence for users and exercises.
type Repository struct {
	users     *mongo.Collection
	exercises *mongo.Collection
	now       func() time.Time
}

// NewRepository constructs a Repository on db.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:     db.Collection(usersCollection),
		exercises: db.Collection(exercisesCollection),
		now:       time.Now,
	}
}

// EnsureIndexes creates the index backing log queries.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ValidID reports whether id is a hex ObjectID.
func (r *Repository) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// CreateUser implements domain.Repository.
func (r *Repository) CreateUser(ctx context.Context, username string) (domain.User, error) {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  username,
		CreatedAt: r.now().UTC(),
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return domain.User{}, fmt.Errorf("db error: %w", err)
	}
	return domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// FindUserByID returns domain.ErrNotFound when no document matches.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// ListUsers returns users in registration order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, domain.User{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return users, nil
}

// InsertExercise implements domain.Repository.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	userOID, err := primitive.ObjectIDFromHex(exercise.UserID)
	if err != nil {
		return domain.Exercise{}, fmt.Errorf("db error: %w", err)
	}

	doc := exerciseDocument{
		ID:          primitive.NewObjectID(),
		UserID:      userOID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date.UTC(),
		CreatedAt:   r.now().UTC(),
	}
	if _, err := r.exercises.InsertOne(ctx, doc); err != nil {
		return domain.Exercise{}, fmt.Errorf("db error: %w", err)
	}
	return doc.toDomain(), nil
}

// QueryExercises returns the user's exercises matching query, oldest first.
func (r *Repository) QueryExercises(ctx context.Context, userID string, query domain.ExerciseQuery) ([]domain.Exercise, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Exercise{}, nil
	}

	cursor, err := r.exercises.Find(ctx, logFilter(oid, query), findOptions(query))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var docs []exerciseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	exercises := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		exercises = append(exercises, doc.toDomain())
	}
	return exercises, nil
}

// CountExercises implements domain.Repository.
func (r *Repository) CountExercises(ctx context.Context, userID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}

	count, err := r.exercises.CountDocuments(ctx, bson.M{"userId": oid})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return int(count), nil
}

// Reset drops both collections and recreates the log index.
func (r *Repository) Reset(ctx context.Context) error {
	if err := r.exercises.Drop(ctx); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := r.users.Drop(ctx); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return r.EnsureIndexes(ctx)
}

func logFilter(userID primitive.ObjectID, query domain.ExerciseQuery) bson.M {
	filter := bson.M{"userId": userID}

	dateRange := bson.M{}
	if query.From != nil {
		dateRange["$gte"] = *query.From
	}
	if query.To != nil {
		dateRange["$lte"] = *query.To
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	return filter
}

func findOptions(query domain.ExerciseQuery) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}
	return opts
}

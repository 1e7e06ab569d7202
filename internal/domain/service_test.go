package domain_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/dates"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
)

func newService(t *testing.T, opts ...domain.Option) (*domain.Service, domain.User) {
	t.Helper()
	svc := domain.NewService(memory.NewRepository(), opts...)
	user, err := svc.CreateUser(context.Background(), domain.CreateUserInput{Username: "alice"})
	require.NoError(t, err)
	return svc, user
}

func requireKind(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, message, domainErr.Message)
}

func TestCreateUserThenListUsers(t *testing.T) {
	ctx := context.Background()
	svc := domain.NewService(memory.NewRepository())

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)

	bob, err := svc.CreateUser(ctx, domain.CreateUserInput{Username: "  bob "})
	require.NoError(t, err)
	require.Equal(t, "bob", bob.Username)
	require.NotEmpty(t, bob.ID)

	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.User{bob}, users)
}

func TestCreateUserRequiresUsername(t *testing.T) {
	svc := domain.NewService(memory.NewRepository())

	for _, username := range []string{"", "   ", "\t\n"} {
		_, err := svc.CreateUser(context.Background(), domain.CreateUserInput{Username: username})
		requireKind(t, err, domain.ErrValidation, "Username is required")
	}
}

func TestAddExerciseWithExplicitDate(t *testing.T) {
	svc, user := newService(t)

	owner, exercise, err := svc.AddExercise(context.Background(), domain.AddExerciseInput{
		UserID:      user.ID,
		Description: "run",
		Duration:    "30",
		Date:        "2024-01-15",
	})
	require.NoError(t, err)
	require.Equal(t, user, owner)
	require.Equal(t, "run", exercise.Description)
	require.Equal(t, 30, exercise.Duration)
	require.Equal(t, time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC), exercise.Date)
	require.Equal(t, "Mon Jan 15 2024", dates.RenderCalendarDate(exercise.Date))
}

func TestAddExerciseDefaultsToServerDay(t *testing.T) {
	eastern := time.FixedZone("EST", -5*3600)
	clock := func() time.Time { return time.Date(2024, time.March, 10, 21, 30, 0, 0, eastern) }
	svc, user := newService(t, domain.WithClock(clock))

	_, exercise, err := svc.AddExercise(context.Background(), domain.AddExerciseInput{
		UserID:      user.ID,
		Description: "walk",
		Duration:    "15",
	})
	require.NoError(t, err)
	require.Equal(t, "Sun Mar 10 2024", dates.RenderCalendarDate(exercise.Date))
}

func TestAddExerciseValidation(t *testing.T) {
	svc, user := newService(t)

	cases := []struct {
		name    string
		input   domain.AddExerciseInput
		message string
	}{
		{"missing description", domain.AddExerciseInput{Duration: "30"}, "Description is required"},
		{"blank description", domain.AddExerciseInput{Description: "  ", Duration: "30"}, "Description is required"},
		{"missing duration", domain.AddExerciseInput{Description: "run"}, "Duration is required"},
		{"non numeric duration", domain.AddExerciseInput{Description: "run", Duration: "abc"}, "Duration must be a number"},
		{"zero duration", domain.AddExerciseInput{Description: "run", Duration: "0"}, "Duration must be a positive number of minutes"},
		{"negative duration", domain.AddExerciseInput{Description: "run", Duration: "-5"}, "Duration must be a positive number of minutes"},
		{"fractional duration", domain.AddExerciseInput{Description: "run", Duration: "1.5"}, "Duration must be a positive number of minutes"},
		{"duration beyond int32", domain.AddExerciseInput{Description: "run", Duration: "3000000000"}, "Duration must be a positive number of minutes"},
		{"malformed date", domain.AddExerciseInput{Description: "run", Duration: "30", Date: "15/01/2024"}, "Invalid date, expected YYYY-MM-DD"},
		{"impossible date", domain.AddExerciseInput{Description: "run", Duration: "30", Date: "2024-02-30"}, "Invalid date, expected YYYY-MM-DD"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.input.UserID = user.ID
			_, _, err := svc.AddExercise(context.Background(), tc.input)
			requireKind(t, err, domain.ErrValidation, tc.message)
		})
	}
}

func nonCanonicalIDs(id string) []string {
	return []string{
		strings.ToUpper(id),
		"{" + id + "}",
		strings.ReplaceAll(id, "-", ""),
		"urn:uuid:" + id,
	}
}

func TestAddExerciseAcceptsLargestDuration(t *testing.T) {
	svc, user := newService(t)

	_, exercise, err := svc.AddExercise(context.Background(), domain.AddExerciseInput{
		UserID:      user.ID,
		Description: "ultra",
		Duration:    "2147483647",
	})
	require.NoError(t, err)
	require.Equal(t, 2147483647, exercise.Duration)
}

func TestAddExerciseUserChecks(t *testing.T) {
	svc, user := newService(t)
	ctx := context.Background()
	input := domain.AddExerciseInput{Description: "run", Duration: "30"}

	input.UserID = "not-an-id"
	_, _, err := svc.AddExercise(ctx, input)
	requireKind(t, err, domain.ErrInvalidID, "Invalid user id")

	input.UserID = ""
	_, _, err = svc.AddExercise(ctx, input)
	requireKind(t, err, domain.ErrInvalidID, "Invalid user id")

	input.UserID = "00000000-0000-0000-0000-000000000000"
	_, _, err = svc.AddExercise(ctx, input)
	requireKind(t, err, domain.ErrNotFound, "User not found")

	for _, id := range nonCanonicalIDs(user.ID) {
		input.UserID = id
		_, _, err = svc.AddExercise(ctx, input)
		requireKind(t, err, domain.ErrInvalidID, "Invalid user id")
	}
}

func TestAddExerciseChecksUserBeforeFields(t *testing.T) {
	svc, _ := newService(t)

	_, _, err := svc.AddExercise(context.Background(), domain.AddExerciseInput{UserID: "00000000-0000-0000-0000-000000000000"})
	requireKind(t, err, domain.ErrNotFound, "User not found")
}

func seedWeek(t *testing.T, svc *domain.Service, userID string) {
	t.Helper()
	for _, day := range []string{"2024-01-04", "2024-01-01", "2024-01-05", "2024-01-03", "2024-01-02"} {
		_, _, err := svc.AddExercise(context.Background(), domain.AddExerciseInput{
			UserID:      userID,
			Description: "session " + day,
			Duration:    "20",
			Date:        day,
		})
		require.NoError(t, err)
	}
}

func TestGetLogSortsAscending(t *testing.T) {
	svc, user := newService(t)
	seedWeek(t, svc, user.ID)

	log, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID})
	require.NoError(t, err)
	require.Equal(t, user, log.User)
	require.Equal(t, 5, log.Count)
	require.Len(t, log.Exercises, 5)

	rendered := make([]string, 0, len(log.Exercises))
	for _, exercise := range log.Exercises {
		rendered = append(rendered, dates.RenderCalendarDate(exercise.Date))
	}
	require.Equal(t, []string{
		"Mon Jan 01 2024",
		"Tue Jan 02 2024",
		"Wed Jan 03 2024",
		"Thu Jan 04 2024",
		"Fri Jan 05 2024",
	}, rendered)
}

func TestGetLogCountIgnoresFilters(t *testing.T) {
	svc, user := newService(t)
	seedWeek(t, svc, user.ID)

	log, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID, From: "2024-01-03", Limit: "1"})
	require.NoError(t, err)
	require.Equal(t, 5, log.Count)
	require.Len(t, log.Exercises, 1)
	require.Equal(t, "session 2024-01-03", log.Exercises[0].Description)
}

func TestGetLogRangeIsInclusive(t *testing.T) {
	svc, user := newService(t)
	seedWeek(t, svc, user.ID)

	log, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID, From: "2024-01-02", To: "2024-01-04"})
	require.NoError(t, err)
	require.Len(t, log.Exercises, 3)
	assert.Equal(t, "session 2024-01-02", log.Exercises[0].Description)
	assert.Equal(t, "session 2024-01-04", log.Exercises[2].Description)

	log, err = svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID, To: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, log.Exercises, 1)
}

func TestGetLogIgnoresUnusableLimit(t *testing.T) {
	svc, user := newService(t)
	seedWeek(t, svc, user.ID)

	for _, limit := range []string{"abc", "0", "-2", "", "2.5"} {
		log, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID, Limit: limit})
		require.NoError(t, err, "limit %q", limit)
		require.Len(t, log.Exercises, 5, "limit %q", limit)
	}
}

func TestGetLogEmptyIsNotNil(t *testing.T) {
	svc, user := newService(t)

	log, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID})
	require.NoError(t, err)
	require.NotNil(t, log.Exercises)
	require.Empty(t, log.Exercises)
	require.Zero(t, log.Count)
}

func TestGetLogRejectsMalformedBounds(t *testing.T) {
	svc, user := newService(t)

	_, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID, From: "yesterday"})
	requireKind(t, err, domain.ErrValidation, "Invalid from date, expected YYYY-MM-DD")

	_, err = svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID, To: "2024-13-01"})
	requireKind(t, err, domain.ErrValidation, "Invalid to date, expected YYYY-MM-DD")
}

func TestGetLogUserChecks(t *testing.T) {
	svc, user := newService(t)

	_, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: "xyz"})
	requireKind(t, err, domain.ErrInvalidID, "Invalid user id")

	_, err = svc.GetLog(context.Background(), domain.LogQueryInput{UserID: "00000000-0000-0000-0000-000000000000"})
	requireKind(t, err, domain.ErrNotFound, "User not found")

	for _, id := range nonCanonicalIDs(user.ID) {
		_, err = svc.GetLog(context.Background(), domain.LogQueryInput{UserID: id})
		requireKind(t, err, domain.ErrInvalidID, "Invalid user id")
	}
}

func TestStoreFailuresHideCause(t *testing.T) {
	cause := errors.New("connection refused")
	svc := domain.NewService(&failingRepo{err: cause})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserInput{Username: "bob"})
	requireKind(t, err, domain.ErrStore, "Failed to create user")
	require.ErrorIs(t, err, cause)

	_, err = svc.ListUsers(ctx)
	requireKind(t, err, domain.ErrStore, "Failed to fetch users")

	_, _, err = svc.AddExercise(ctx, domain.AddExerciseInput{UserID: "u-1", Description: "run", Duration: "5"})
	requireKind(t, err, domain.ErrStore, "Failed to add exercise")

	_, err = svc.GetLog(ctx, domain.LogQueryInput{UserID: "u-1"})
	requireKind(t, err, domain.ErrStore, "Failed to fetch exercise log")
}

func TestPublishFailureDoesNotFailRecording(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc, user := newService(t, domain.WithPublisher(publisher))

	_, exercise, err := svc.AddExercise(context.Background(), domain.AddExerciseInput{
		UserID:      user.ID,
		Description: "row",
		Duration:    "10",
		Date:        "2024-06-01",
	})
	require.NoError(t, err)
	require.Len(t, publisher.calls, 1)
	require.Equal(t, exercise.ID, publisher.calls[0].ID)

	log, err := svc.GetLog(context.Background(), domain.LogQueryInput{UserID: user.ID})
	require.NoError(t, err)
	require.Equal(t, 1, log.Count)
}

type failingRepo struct {
	err error
}

func (f *failingRepo) ValidID(string) bool { return true }

func (f *failingRepo) CreateUser(context.Context, string) (domain.User, error) {
	return domain.User{}, f.err
}

func (f *failingRepo) FindUserByID(context.Context, string) (*domain.User, error) {
	return nil, f.err
}

func (f *failingRepo) ListUsers(context.Context) ([]domain.User, error) {
	return nil, f.err
}

func (f *failingRepo) InsertExercise(context.Context, domain.Exercise) (domain.Exercise, error) {
	return domain.Exercise{}, f.err
}

func (f *failingRepo) QueryExercises(context.Context, string, domain.ExerciseQuery) ([]domain.Exercise, error) {
	return nil, f.err
}

func (f *failingRepo) CountExercises(context.Context, string) (int, error) {
	return 0, f.err
}

func (f *failingRepo) Reset(context.Context) error { return f.err }

type recordingPublisher struct {
	calls []domain.Exercise
	err   error
}

func (p *recordingPublisher) ExerciseRecorded(_ context.Context, _ domain.User, exercise domain.Exercise) error {
	p.calls = append(p.calls, exercise)
	return p.err
}

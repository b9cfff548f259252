package readingsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"readinglog/internal/catalog"
	"readinglog/internal/clock"
	"readinglog/internal/models"
	"readinglog/internal/storage"
	"readinglog/internal/storage/stubs"
)

const (
	johnDoeUser     = "johndoe"
	missingBookUUID = "1e4014b1-a551-4310-9f30-590c3140b695"
)

var serviceToday = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

type fixture struct {
	service  *Service
	db       storage.Storage
	bookUUID string
}

func newFixture(t *testing.T, db storage.Storage) fixture {
	t.Helper()

	books := catalog.New(db, zap.NewNop())
	bookUUID, err := books.CreateBook(context.Background(), johnDoeUser, models.Book{
		Title:      "Kotlin in Action",
		PagesTotal: 200,
	})
	require.NoError(t, err)

	return fixture{
		service:  NewService(books, NewRecordStore(db), clock.Fixed(serviceToday), zap.NewNop()),
		db:       db,
		bookUUID: bookUUID,
	}
}

// newSession creates a session with the given entries
func (f fixture) newSession(t *testing.T, entries ...models.DateReadingSession) models.ReadingSession {
	t.Helper()
	ctx := context.Background()

	session, err := f.service.CreateReadingSession(ctx, johnDoeUser, f.bookUUID, models.ReadingSession{Deadline: "2026-12-31"})
	require.NoError(t, err)
	for _, entry := range entries {
		_, err := f.service.CreateDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, entry)
		require.NoError(t, err)
	}
	return session
}

// failingUpdates rejects every record update
type failingUpdates struct {
	*stubs.MockDB
}

func (failingUpdates) UpdateRecord(context.Context, string, string, string, []byte) error {
	return errors.New("disk full")
}

// slowReads widens the window between reading a session and writing it back
type slowReads struct {
	*stubs.MockDB
}

func (s slowReads) ListRecords(ctx context.Context, user, collection string) ([]storage.Record, error) {
	records, err := s.MockDB.ListRecords(ctx, user, collection)
	time.Sleep(20 * time.Millisecond)
	return records, err
}

func (s slowReads) GetRecord(ctx context.Context, user, collection, id string) (storage.Record, bool, error) {
	record, found, err := s.MockDB.GetRecord(ctx, user, collection, id)
	time.Sleep(20 * time.Millisecond)
	return record, found, err
}

func TestService_ListReadingSessions(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	ctx := context.Background()

	sessions, err := f.service.ListReadingSessions(ctx, johnDoeUser, f.bookUUID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	session := f.newSession(t)

	sessions, err = f.service.ListReadingSessions(ctx, johnDoeUser, f.bookUUID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session.UUID, sessions[0].UUID)
}

func TestService_GetCurrentReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	session := f.newSession(t)

	sessions, err := f.service.GetCurrentReadingSession(context.Background(), johnDoeUser, f.bookUUID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session, sessions[0])
}

func TestService_GetCurrentReadingSessionForMissingBook(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())

	_, err := f.service.GetCurrentReadingSession(context.Background(), johnDoeUser, missingBookUUID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestService_CreateReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	ctx := context.Background()

	created, err := f.service.CreateReadingSession(ctx, johnDoeUser, f.bookUUID, models.ReadingSession{
		UUID:     "ignored",
		Deadline: "2026-12-31",
		DateReadingSessions: []models.DateReadingSession{
			{Date: "2026-10-10", LastReadPage: 10},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.UUID)
	assert.NotEqual(t, "ignored", created.UUID)
	assert.Equal(t, f.bookUUID, created.BookUUID)
	assert.Equal(t, "2026-12-31", created.Deadline)
	assert.Empty(t, created.DateReadingSessions, "a new session starts with an empty timeline")

	stored, err := f.service.GetReadingSession(ctx, johnDoeUser, f.bookUUID, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestService_CreateAdditionalReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	f.newSession(t)

	_, err := f.service.CreateReadingSession(context.Background(), johnDoeUser, f.bookUUID, models.ReadingSession{})
	assert.ErrorIs(t, err, ErrReadingSessionAlreadyExists)

	sessions, err := f.service.ListReadingSessions(context.Background(), johnDoeUser, f.bookUUID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestService_CreateReadingSessionForMissingBook(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())

	_, err := f.service.CreateReadingSession(context.Background(), johnDoeUser, missingBookUUID, models.ReadingSession{})
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestService_CreateReadingSessionWithInvalidDeadline(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())

	_, err := f.service.CreateReadingSession(context.Background(), johnDoeUser, f.bookUUID, models.ReadingSession{Deadline: "next year"})
	assert.ErrorIs(t, err, ErrReadingSessionInvalid)
}

func TestService_GetMissingReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())

	_, err := f.service.GetReadingSession(context.Background(), johnDoeUser, f.bookUUID, "missing")
	assert.ErrorIs(t, err, ErrReadingSessionNotFound)
}

func TestService_DeleteReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	ctx := context.Background()
	session := f.newSession(t, models.DateReadingSession{Date: "2026-10-10", LastReadPage: 10})

	uuid, err := f.service.DeleteReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID)
	require.NoError(t, err)
	assert.Equal(t, session.UUID, uuid)

	_, err = f.service.GetReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID)
	assert.ErrorIs(t, err, ErrReadingSessionNotFound)

	// The book accepts a new session once the previous one is gone
	_, err = f.service.CreateReadingSession(ctx, johnDoeUser, f.bookUUID, models.ReadingSession{})
	assert.NoError(t, err)
}

func TestService_DeleteMissingReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())

	_, err := f.service.DeleteReadingSession(context.Background(), johnDoeUser, f.bookUUID, "missing")
	assert.ErrorIs(t, err, ErrReadingSessionNotFound)
}

func TestService_CreateDateReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	ctx := context.Background()
	session := f.newSession(t)

	entry := models.DateReadingSession{Date: "2026-10-12", LastReadPage: 25, Bookmark: "end of chapter 2"}
	created, err := f.service.CreateDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, entry)
	require.NoError(t, err)
	assert.Equal(t, entry, created)

	fetched, err := f.service.GetDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-12")
	require.NoError(t, err)
	assert.Equal(t, entry.LastReadPage, fetched.LastReadPage)
	assert.Equal(t, entry.Bookmark, fetched.Bookmark)
}

func TestService_CreateDateReadingSessionKeepsTimelineSorted(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	session := f.newSession(t,
		models.DateReadingSession{Date: "2026-10-12", LastReadPage: 30},
		models.DateReadingSession{Date: "2026-10-10", LastReadPage: 10},
		models.DateReadingSession{Date: "2026-10-11", LastReadPage: 20},
	)

	stored, err := f.service.GetReadingSession(context.Background(), johnDoeUser, f.bookUUID, session.UUID)
	require.NoError(t, err)

	var dates []string
	for _, entry := range stored.DateReadingSessions {
		dates = append(dates, entry.Date)
	}
	assert.Equal(t, []string{"2026-10-10", "2026-10-11", "2026-10-12"}, dates)
}

func TestService_CreateDateReadingSessionRejections(t *testing.T) {
	testCases := []struct {
		name  string
		entry models.DateReadingSession
		want  error
	}{
		{
			name:  "missing date",
			entry: models.DateReadingSession{LastReadPage: 25},
			want:  ErrDateReadingSessionInvalid,
		},
		{
			name:  "invalid date",
			entry: models.DateReadingSession{Date: "invalid", LastReadPage: 25},
			want:  ErrDateReadingSessionInvalid,
		},
		{
			name:  "missing last read page",
			entry: models.DateReadingSession{Date: "2026-10-12"},
			want:  ErrDateReadingSessionInvalid,
		},
		{
			name:  "negative last read page",
			entry: models.DateReadingSession{Date: "2026-10-12", LastReadPage: -1},
			want:  ErrDateReadingSessionInvalid,
		},
		{
			name:  "existing date",
			entry: models.DateReadingSession{Date: "2026-10-10", LastReadPage: 40},
			want:  ErrDateReadingSessionAlreadyExists,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, stubs.NewMockDB())
			ctx := context.Background()
			session := f.newSession(t, models.DateReadingSession{Date: "2026-10-10", LastReadPage: 10})

			_, err := f.service.CreateDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, tc.entry)
			assert.ErrorIs(t, err, tc.want)

			stored, err := f.service.GetReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID)
			require.NoError(t, err)
			require.Len(t, stored.DateReadingSessions, 1)
			assert.Equal(t, 10, stored.DateReadingSessions[0].LastReadPage)
		})
	}
}

func TestService_CreateDateReadingSessionForMissingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())

	_, err := f.service.CreateDateReadingSession(context.Background(), johnDoeUser, f.bookUUID, "missing",
		models.DateReadingSession{Date: "2026-10-12", LastReadPage: 25})
	assert.ErrorIs(t, err, ErrReadingSessionNotFound)
}

func TestService_CreateDateReadingSessionStorageFailure(t *testing.T) {
	db := failingUpdates{stubs.NewMockDB()}
	f := newFixture(t, db)
	ctx := context.Background()
	session, err := f.service.CreateReadingSession(ctx, johnDoeUser, f.bookUUID, models.ReadingSession{})
	require.NoError(t, err)

	_, err = f.service.CreateDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID,
		models.DateReadingSession{Date: "2026-10-12", LastReadPage: 25})
	require.Error(t, err)
	var sessionErr *Error
	assert.False(t, errors.As(err, &sessionErr), "storage failures are not client errors")

	_, err = f.service.GetDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-12")
	assert.ErrorIs(t, err, ErrDateReadingSessionNotFound)
}

func TestService_GetMissingDateReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	session := f.newSession(t, models.DateReadingSession{Date: "2026-10-10", LastReadPage: 10})

	_, err := f.service.GetDateReadingSession(context.Background(), johnDoeUser, f.bookUUID, session.UUID, "2026-10-11")
	assert.ErrorIs(t, err, ErrDateReadingSessionNotFound)
}

func TestService_UpdateDateReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	ctx := context.Background()
	session := f.newSession(t, models.DateReadingSession{Date: "2026-10-10", LastReadPage: 10, Bookmark: "old"})

	date, err := f.service.UpdateDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-10",
		models.DateReadingSession{Date: "2026-10-15", LastReadPage: 42, Bookmark: "new"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-10", date)

	entry, err := f.service.GetDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-10")
	require.NoError(t, err)
	assert.Equal(t, models.DateReadingSession{Date: "2026-10-10", LastReadPage: 42, Bookmark: "new"}, entry)

	_, err = f.service.GetDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-15")
	assert.ErrorIs(t, err, ErrDateReadingSessionNotFound, "the date key is never renamed")
}

func TestService_UpdateDateReadingSessionRejections(t *testing.T) {
	testCases := []struct {
		name       string
		targetDate string
		entry      models.DateReadingSession
		want       error
	}{
		{
			name:       "missing date",
			targetDate: "2026-10-10",
			entry:      models.DateReadingSession{LastReadPage: 25},
			want:       ErrDateReadingSessionInvalid,
		},
		{
			name:       "invalid date",
			targetDate: "2026-10-10",
			entry:      models.DateReadingSession{Date: "invalid", LastReadPage: 25},
			want:       ErrDateReadingSessionInvalid,
		},
		{
			name:       "missing last read page",
			targetDate: "2026-10-10",
			entry:      models.DateReadingSession{Date: "2026-10-10"},
			want:       ErrDateReadingSessionInvalid,
		},
		{
			name:       "zero last read page",
			targetDate: "2026-10-10",
			entry:      models.DateReadingSession{Date: "2026-10-10", LastReadPage: 0},
			want:       ErrDateReadingSessionInvalid,
		},
		{
			name:       "missing entry",
			targetDate: "2026-10-11",
			entry:      models.DateReadingSession{Date: "2026-10-11", LastReadPage: 25},
			want:       ErrDateReadingSessionNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, stubs.NewMockDB())
			ctx := context.Background()
			session := f.newSession(t, models.DateReadingSession{Date: "2026-10-10", LastReadPage: 10})

			_, err := f.service.UpdateDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, tc.targetDate, tc.entry)
			assert.ErrorIs(t, err, tc.want)

			entry, err := f.service.GetDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-10")
			require.NoError(t, err)
			assert.Equal(t, 10, entry.LastReadPage)
		})
	}
}

func TestService_DeleteDateReadingSession(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	ctx := context.Background()
	session := f.newSession(t,
		models.DateReadingSession{Date: "2026-10-10", LastReadPage: 10},
		models.DateReadingSession{Date: "2026-10-11", LastReadPage: 20},
	)

	date, err := f.service.DeleteDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-10", date)

	_, err = f.service.GetDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-10")
	assert.ErrorIs(t, err, ErrDateReadingSessionNotFound)

	_, err = f.service.DeleteDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-10")
	assert.ErrorIs(t, err, ErrDateReadingSessionNotFound)

	remaining, err := f.service.GetDateReadingSession(ctx, johnDoeUser, f.bookUUID, session.UUID, "2026-10-11")
	require.NoError(t, err)
	assert.Equal(t, 20, remaining.LastReadPage)
}

func TestService_GetReadingSessionProgress(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	session := f.newSession(t,
		models.DateReadingSession{Date: "2026-10-10", LastReadPage: 50},
		models.DateReadingSession{Date: "2026-10-13", LastReadPage: 80},
	)

	progress, err := f.service.GetReadingSessionProgress(context.Background(), johnDoeUser, f.bookUUID, session.UUID)
	require.NoError(t, err)

	assert.Equal(t, f.bookUUID, progress.BookUUID)
	assert.Equal(t, 80, progress.LastReadPage)
	assert.Equal(t, 200, progress.PagesTotal)
	assert.Equal(t, 40, progress.ReadPercentage)
	assert.InDelta(t, 10, progress.AveragePagesPerDay, 1e-9)
	require.NotNil(t, progress.EstimatedReadDaysLeft)
	assert.Equal(t, 12, *progress.EstimatedReadDaysLeft)
	require.NotNil(t, progress.EstimatedDaysLeft)
	assert.Equal(t, 12, *progress.EstimatedDaysLeft)
	require.NotNil(t, progress.EstimatedFinishDate)
	assert.Equal(t, "2026-10-29", *progress.EstimatedFinishDate)
	assert.Equal(t, "2026-12-31", progress.Deadline)
}

func TestService_GetReadingSessionProgressRejections(t *testing.T) {
	f := newFixture(t, stubs.NewMockDB())
	ctx := context.Background()
	empty := f.newSession(t)

	_, err := f.service.GetReadingSessionProgress(ctx, johnDoeUser, missingBookUUID, empty.UUID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	_, err = f.service.GetReadingSessionProgress(ctx, johnDoeUser, f.bookUUID, "missing")
	assert.ErrorIs(t, err, ErrReadingSessionNotFound)

	_, err = f.service.GetReadingSessionProgress(ctx, johnDoeUser, f.bookUUID, empty.UUID)
	assert.ErrorIs(t, err, ErrDateReadingSessionNotFound)
}

func TestError_ExposesReason(t *testing.T) {
	var err error = ErrDateReadingSessionAlreadyExists

	var sessionErr *Error
	require.True(t, errors.As(err, &sessionErr))
	assert.Equal(t, ReasonDateReadingSessionAlreadyExists, sessionErr.Reason)
	assert.Equal(t, "DATE_READING_SESSION_ALREADY_EXISTS", err.Error())
}

func TestService_ConcurrentWritesToOneBook(t *testing.T) {
	f := newFixture(t, slowReads{stubs.NewMockDB()})
	ctx := context.Background()

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateReadingSession(ctx, johnDoeUser, f.bookUUID, models.ReadingSession{})
			if err == nil {
				created.Add(1)
				return
			}
			assert.ErrorIs(t, err, ErrReadingSessionAlreadyExists)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
	sessions, err := f.service.ListReadingSessions(ctx, johnDoeUser, f.bookUUID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	sessionUUID := sessions[0].UUID

	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			entry := models.DateReadingSession{Date: fmt.Sprintf("2026-10-%02d", day), LastReadPage: day * 10}
			_, err := f.service.CreateDateReadingSession(ctx, johnDoeUser, f.bookUUID, sessionUUID, entry)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := f.service.GetReadingSession(ctx, johnDoeUser, f.bookUUID, sessionUUID)
	require.NoError(t, err)
	assert.Len(t, stored.DateReadingSessions, 10, "every acknowledged entry is stored")
}

// Package readingsession tracks reading sessions and projects when a book will be finished.
//
// A book has at most one reading session. A session holds a timeline of dated entries,
// one per calendar date, each recording the last page read on that date.
package readingsession

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"readinglog/internal/catalog"
	"readinglog/internal/clock"
	"readinglog/internal/keylock"
	"readinglog/internal/models"
)

// BookFinder resolves a user's book
type BookFinder interface {
	GetBook(ctx context.Context, user, bookUUID string) (models.Book, bool, error)
}

// Service validates reading-session changes and persists them.
// Every write validates first and persists last, so a failed call leaves no change behind.
// Writes to the sessions of one book are serialized within the process.
type Service struct {
	books  BookFinder
	store  Store
	clock  clock.Clock
	logger *zap.Logger
	locks  keylock.Locker[bookKey]
}

type bookKey struct {
	user     string
	bookUUID string
}

// NewService creates a reading-session service
func NewService(books BookFinder, store Store, clk clock.Clock, logger *zap.Logger) *Service {
	return &Service{
		books:  books,
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// ListReadingSessions returns the book's sessions in storage order
func (s *Service) ListReadingSessions(ctx context.Context, user, bookUUID string) ([]models.ReadingSession, error) {
	return s.store.List(ctx, user, bookUUID)
}

// GetCurrentReadingSession returns the sessions of an existing book.
// With one session per book this is at most one element.
func (s *Service) GetCurrentReadingSession(ctx context.Context, user, bookUUID string) ([]models.ReadingSession, error) {
	if _, err := s.getBook(ctx, user, bookUUID); err != nil {
		return nil, err
	}
	return s.store.List(ctx, user, bookUUID)
}

// CreateReadingSession starts a session for a book that has none.
// Dated entries in the request are dropped: a new session starts with an empty timeline.
func (s *Service) CreateReadingSession(ctx context.Context, user, bookUUID string, requested models.ReadingSession) (models.ReadingSession, error) {
	defer s.lock(user, bookUUID)()

	if _, err := s.getBook(ctx, user, bookUUID); err != nil {
		return models.ReadingSession{}, err
	}

	if requested.Deadline != "" {
		if _, err := time.Parse(models.DateLayout, requested.Deadline); err != nil {
			return models.ReadingSession{}, ErrReadingSessionInvalid
		}
	}

	existing, err := s.store.List(ctx, user, bookUUID)
	if err != nil {
		return models.ReadingSession{}, err
	}
	if len(existing) > 0 {
		s.logger.Debug("Reading session already exists",
			zap.String("user", user),
			zap.String("book_uuid", bookUUID),
			zap.String("reading_session_uuid", existing[0].UUID),
		)
		return models.ReadingSession{}, ErrReadingSessionAlreadyExists
	}

	session := models.ReadingSession{
		BookUUID:            bookUUID,
		Deadline:            requested.Deadline,
		DateReadingSessions: []models.DateReadingSession{},
	}
	id, err := s.store.Create(ctx, user, bookUUID, session)
	if err != nil {
		return models.ReadingSession{}, err
	}
	session.UUID = id

	s.logger.Info("Reading session created",
		zap.String("user", user),
		zap.String("book_uuid", bookUUID),
		zap.String("reading_session_uuid", id),
		zap.String("deadline", session.Deadline),
	)
	return session, nil
}

// GetReadingSession returns one session of a book
func (s *Service) GetReadingSession(ctx context.Context, user, bookUUID, sessionUUID string) (models.ReadingSession, error) {
	session, found, err := s.store.Get(ctx, user, bookUUID, sessionUUID)
	if err != nil {
		return models.ReadingSession{}, err
	}
	if !found {
		return models.ReadingSession{}, ErrReadingSessionNotFound
	}
	return session, nil
}

// DeleteReadingSession removes a session together with its timeline
func (s *Service) DeleteReadingSession(ctx context.Context, user, bookUUID, sessionUUID string) (string, error) {
	defer s.lock(user, bookUUID)()

	if _, err := s.GetReadingSession(ctx, user, bookUUID, sessionUUID); err != nil {
		return "", err
	}
	if err := s.store.Delete(ctx, user, bookUUID, sessionUUID); err != nil {
		return "", err
	}

	s.logger.Info("Reading session deleted",
		zap.String("user", user),
		zap.String("book_uuid", bookUUID),
		zap.String("reading_session_uuid", sessionUUID),
	)
	return sessionUUID, nil
}

// CreateDateReadingSession adds a dated entry to a session
func (s *Service) CreateDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID string, entry models.DateReadingSession) (models.DateReadingSession, error) {
	defer s.lock(user, bookUUID)()

	session, err := s.GetReadingSession(ctx, user, bookUUID, sessionUUID)
	if err != nil {
		return models.DateReadingSession{}, err
	}
	if err := Validate(entry); err != nil {
		return models.DateReadingSession{}, err
	}
	if indexOf(session.DateReadingSessions, entry.Date) >= 0 {
		return models.DateReadingSession{}, ErrDateReadingSessionAlreadyExists
	}

	session.DateReadingSessions = append(session.DateReadingSessions, entry)
	if err := s.save(ctx, user, bookUUID, session); err != nil {
		return models.DateReadingSession{}, err
	}

	s.logger.Debug("Date reading session created",
		zap.String("user", user),
		zap.String("reading_session_uuid", sessionUUID),
		zap.String("date", entry.Date),
		zap.Int("last_read_page", entry.LastReadPage),
	)
	return entry, nil
}

// GetDateReadingSession returns the entry recorded on date
func (s *Service) GetDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID, date string) (models.DateReadingSession, error) {
	session, err := s.GetReadingSession(ctx, user, bookUUID, sessionUUID)
	if err != nil {
		return models.DateReadingSession{}, err
	}
	i := indexOf(session.DateReadingSessions, date)
	if i < 0 {
		return models.DateReadingSession{}, ErrDateReadingSessionNotFound
	}
	return session.DateReadingSessions[i], nil
}

// UpdateDateReadingSession replaces the page and bookmark recorded on date.
// The date of an entry never changes; entry.Date is validated but not applied.
func (s *Service) UpdateDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID, date string, entry models.DateReadingSession) (string, error) {
	defer s.lock(user, bookUUID)()

	session, err := s.GetReadingSession(ctx, user, bookUUID, sessionUUID)
	if err != nil {
		return "", err
	}
	if err := Validate(entry); err != nil {
		return "", err
	}
	i := indexOf(session.DateReadingSessions, date)
	if i < 0 {
		return "", ErrDateReadingSessionNotFound
	}

	session.DateReadingSessions[i].LastReadPage = entry.LastReadPage
	session.DateReadingSessions[i].Bookmark = entry.Bookmark
	if err := s.save(ctx, user, bookUUID, session); err != nil {
		return "", err
	}
	return date, nil
}

// DeleteDateReadingSession removes the entry recorded on date
func (s *Service) DeleteDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID, date string) (string, error) {
	defer s.lock(user, bookUUID)()

	session, err := s.GetReadingSession(ctx, user, bookUUID, sessionUUID)
	if err != nil {
		return "", err
	}
	i := indexOf(session.DateReadingSessions, date)
	if i < 0 {
		return "", ErrDateReadingSessionNotFound
	}

	session.DateReadingSessions = append(session.DateReadingSessions[:i], session.DateReadingSessions[i+1:]...)
	if err := s.save(ctx, user, bookUUID, session); err != nil {
		return "", err
	}
	return date, nil
}

// GetReadingSessionProgress computes pace and projected finish for a session
func (s *Service) GetReadingSessionProgress(ctx context.Context, user, bookUUID, sessionUUID string) (models.ReadingSessionProgress, error) {
	book, err := s.getBook(ctx, user, bookUUID)
	if err != nil {
		return models.ReadingSessionProgress{}, err
	}
	session, err := s.GetReadingSession(ctx, user, bookUUID, sessionUUID)
	if err != nil {
		return models.ReadingSessionProgress{}, err
	}
	if len(session.DateReadingSessions) == 0 {
		return models.ReadingSessionProgress{}, ErrDateReadingSessionNotFound
	}

	progress, err := Estimate(book, session, s.clock.Now())
	if err != nil {
		return models.ReadingSessionProgress{}, err
	}
	if progress.EstimatedReadDaysLeft == nil {
		s.logger.Debug("Reading pace does not allow a projection",
			zap.String("user", user),
			zap.String("reading_session_uuid", sessionUUID),
			zap.Float64("average_pages_per_day", progress.AveragePagesPerDay),
		)
	}
	return progress, nil
}

// lock holds the book's sessions for one read-validate-write sequence
func (s *Service) lock(user, bookUUID string) (unlock func()) {
	return s.locks.Lock(bookKey{user: user, bookUUID: bookUUID})
}

func (s *Service) getBook(ctx context.Context, user, bookUUID string) (models.Book, error) {
	book, found, err := s.books.GetBook(ctx, user, bookUUID)
	if err != nil {
		return models.Book{}, err
	}
	if !found {
		return models.Book{}, catalog.ErrBookNotFound
	}
	return book, nil
}

// save keeps the timeline ordered by date
func (s *Service) save(ctx context.Context, user, bookUUID string, session models.ReadingSession) error {
	sort.Slice(session.DateReadingSessions, func(i, j int) bool {
		return session.DateReadingSessions[i].Date < session.DateReadingSessions[j].Date
	})
	if err := s.store.Update(ctx, user, bookUUID, session); err != nil {
		s.logger.Error("Failed to save reading session",
			zap.Error(err),
			zap.String("user", user),
			zap.String("reading_session_uuid", session.UUID),
		)
		return fmt.Errorf("failed to save reading session: %w", err)
	}
	return nil
}

func indexOf(entries []models.DateReadingSession, date string) int {
	for i, entry := range entries {
		if entry.Date == date {
			return i
		}
	}
	return -1
}

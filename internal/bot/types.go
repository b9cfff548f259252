package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglog/internal/clock"
	"readinglog/internal/keylock"
	"readinglog/internal/models"
)

// Conversation commands
const (
	commandNewBook  = "new_book"
	commandBegin    = "begin"
	commandRead     = "read"
	commandProgress = "progress"
)

// Books is the book catalog used by the bot
type Books interface {
	ListBooks(ctx context.Context, user string) ([]models.Book, error)
	GetBook(ctx context.Context, user, bookUUID string) (models.Book, bool, error)
	CreateBook(ctx context.Context, user string, book models.Book) (string, error)
}

// ReadingSessions is the reading-session service used by the bot
type ReadingSessions interface {
	GetCurrentReadingSession(ctx context.Context, user, bookUUID string) ([]models.ReadingSession, error)
	CreateReadingSession(ctx context.Context, user, bookUUID string, requested models.ReadingSession) (models.ReadingSession, error)
	CreateDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID string, entry models.DateReadingSession) (models.DateReadingSession, error)
	UpdateDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID, date string, entry models.DateReadingSession) (string, error)
	GetReadingSessionProgress(ctx context.Context, user, bookUUID, sessionUUID string) (models.ReadingSessionProgress, error)
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          *tgbotapi.BotAPI
	books        Books
	sessions     ReadingSessions
	clock        clock.Clock
	allowedUsers map[int64]bool
	states       map[int64]*ConversationState
	statesMu     sync.RWMutex
	userLocks    keylock.Locker[int64] // one update at a time per user
	logger       *zap.Logger
}

// ConversationState tracks the state of multi-step commands
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]string
}

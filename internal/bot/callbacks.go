package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglog/internal/catalog"
)

// handleBookCallback processes book selection from inline keyboard
func (b *Bot) handleBookCallback(ctx context.Context, query *tgbotapi.CallbackQuery, state *ConversationState) {
	if state.Step != 1 {
		return
	}

	chatID := query.Message.Chat.ID
	user := storageUser(query.From.ID)
	bookUUID := strings.TrimPrefix(query.Data, bookCallbackPrefix)

	book, found, err := b.books.GetBook(ctx, user, bookUUID)
	if err == nil && !found {
		err = catalog.ErrBookNotFound
	}
	if err != nil {
		b.replyError(chatID, err)
		state.Step = stepDone
		return
	}
	state.Data["book"] = book.UUID
	state.Data["title"] = book.Title

	switch state.Command {
	case commandBegin:
		state.Step = 2
		b.reply(chatID, "📅 Enter a deadline as YYYY-MM-DD, or \"skip\" for none:")

	case commandRead:
		sessionUUID, ok := b.currentSession(ctx, chatID, user, book.UUID)
		if !ok {
			state.Step = stepDone
			return
		}
		state.Data["session"] = sessionUUID
		state.Step = 2
		b.reply(chatID, "📖 Which page did you reach today?")

	case commandProgress:
		state.Step = stepDone
		sessionUUID, ok := b.currentSession(ctx, chatID, user, book.UUID)
		if !ok {
			return
		}
		progress, err := b.sessions.GetReadingSessionProgress(ctx, user, book.UUID, sessionUUID)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, formatProgress(book.Title, progress))

	default:
		state.Step = stepDone
	}
}

// currentSession returns the uuid of the book's reading session, telling the user when there is none
func (b *Bot) currentSession(ctx context.Context, chatID int64, user, bookUUID string) (string, bool) {
	sessions, err := b.sessions.GetCurrentReadingSession(ctx, user, bookUUID)
	if err != nil {
		b.logger.Error("Failed to get current reading session",
			zap.Error(err),
			zap.String("user", user),
			zap.String("book_uuid", bookUUID),
		)
		b.replyError(chatID, err)
		return "", false
	}
	if len(sessions) == 0 {
		b.reply(chatID, "You are not reading this book yet. Start with /begin")
		return "", false
	}
	return sessions[0].UUID, true
}

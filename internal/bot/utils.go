package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglog/internal/catalog"
	"readinglog/internal/models"
	"readinglog/internal/readingsession"
)

const (
	stepDone           = -1
	bookCallbackPrefix = "book:"
)

// storageUser maps a Telegram user to the storage user
func storageUser(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (b *Bot) getState(userID int64) *ConversationState {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	return b.states[userID]
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, userID)
}

// sendMessage sends a message, logging failures
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", msg.ChatID))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyError(chatID int64, err error) {
	text, known := describeError(err)
	if !known {
		b.logger.Error("Request failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
	b.reply(chatID, text)
}

// describeError turns a failure into a message for the user.
// It reports false for failures that are not caused by the user's input.
func describeError(err error) (string, bool) {
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		return "❌ Book not found.", true
	case errors.Is(err, catalog.ErrBookAlreadyExists):
		return "❌ A book with this ISBN already exists.", true
	case errors.Is(err, catalog.ErrBookInvalid):
		return "❌ A book needs a title and at least one page.", true
	case errors.Is(err, readingsession.ErrReadingSessionAlreadyExists):
		return "❌ You are already reading this book. Use /read to record progress.", true
	case errors.Is(err, readingsession.ErrReadingSessionNotFound):
		return "❌ You are not reading this book yet. Start with /begin", true
	case errors.Is(err, readingsession.ErrReadingSessionInvalid):
		return "❌ Invalid deadline. Please use YYYY-MM-DD.", true
	case errors.Is(err, readingsession.ErrDateReadingSessionNotFound):
		return "Nothing recorded yet. Use /read first.", true
	case errors.Is(err, readingsession.ErrDateReadingSessionInvalid):
		return "❌ The page must be a positive number.", true
	default:
		return "Something went wrong. Please try again.", false
	}
}

// bookKeyboard lays books out two per row
func bookKeyboard(books []models.Book) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var currentRow []tgbotapi.InlineKeyboardButton
	for i, book := range books {
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(book.Title, bookCallbackPrefix+book.UUID))

		if len(currentRow) == 2 || i == len(books)-1 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatProgress(title string, progress models.ReadingSessionProgress) string {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("📚 %s\n", title))
	text.WriteString(fmt.Sprintf("📖 Page %d of %d (%d%%)\n", progress.LastReadPage, progress.PagesTotal, progress.ReadPercentage))
	text.WriteString(fmt.Sprintf("🐢 %.1f pages per day\n", progress.AveragePagesPerDay))

	if progress.EstimatedFinishDate == nil || progress.EstimatedReadDaysLeft == nil {
		text.WriteString("🏁 Not enough progress to estimate a finish date")
	} else {
		text.WriteString(fmt.Sprintf("🏁 Finish by %s (%d days left)", *progress.EstimatedFinishDate, *progress.EstimatedReadDaysLeft))
	}
	if progress.Deadline != "" {
		text.WriteString(fmt.Sprintf("\n⏰ Deadline: %s", progress.Deadline))
	}
	return text.String()
}

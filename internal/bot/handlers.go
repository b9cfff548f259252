package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.reply(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	if state := b.getState(userID); state != nil {
		if message.IsCommand() {
			// Any command cancels an ongoing conversation
			b.clearState(userID)
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		b.reply(message.Chat.ID, "Use /start to see available commands.")
		return
	}

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case commandNewBook:
		b.handleNewBookStart(message)
	case "books":
		b.handleBooks(ctx, message)
	case commandBegin:
		b.handlePickBookStart(ctx, message, commandBegin, "📚 Which book are you starting?")
	case commandRead:
		b.handlePickBookStart(ctx, message, commandRead, "📚 Which book did you read?")
	case commandProgress:
		b.handlePickBookStart(ctx, message, commandProgress, "📈 Progress of which book?")
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	// Answer the callback query to remove loading state
	if b.api != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.logger.Warn("Failed to answer callback query", zap.Error(err))
		}
	}

	userID := query.From.ID
	state := b.getState(userID)
	if state == nil || query.Message == nil {
		return
	}

	if strings.HasPrefix(query.Data, bookCallbackPrefix) {
		b.handleBookCallback(context.Background(), query, state)
	}

	if state.Step == stepDone {
		b.clearState(userID)
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"readinglog/internal/models"
	"readinglog/internal/readingsession"
)

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	if state.Step == 1 && state.Command != commandNewBook {
		b.reply(message.Chat.ID, "Please pick a book from the list above.")
		return
	}

	switch state.Command {
	case commandNewBook:
		b.handleNewBookConversation(ctx, message, state)
	case commandBegin:
		b.handleBeginConversation(ctx, message, state)
	case commandRead:
		b.handleReadConversation(ctx, message, state)
	}

	if state.Step == stepDone {
		b.clearState(message.From.ID)
	}
}

// handleNewBookConversation asks for the title, then the number of pages
func (b *Bot) handleNewBookConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 1: // Waiting for title
		title := strings.TrimSpace(message.Text)
		if title == "" {
			b.reply(message.Chat.ID, "The title cannot be empty. Please enter the book title:")
			return
		}
		state.Data["title"] = title
		state.Step = 2
		b.reply(message.Chat.ID, "How many pages does it have?")

	case 2: // Waiting for total pages
		pages, err := strconv.Atoi(strings.TrimSpace(message.Text))
		if err != nil || pages < 1 {
			b.reply(message.Chat.ID, "❌ Please enter a positive number of pages:")
			return
		}

		book := models.Book{Title: state.Data["title"], PagesTotal: pages}
		if _, err := b.books.CreateBook(ctx, storageUser(message.From.ID), book); err != nil {
			b.replyError(message.Chat.ID, err)
		} else {
			b.reply(message.Chat.ID, fmt.Sprintf("✅ Book added!\n\n📚 %s\n📄 %d pages", book.Title, book.PagesTotal))
		}
		state.Step = stepDone
	}
}

// handleBeginConversation starts a reading session once the deadline is known
func (b *Bot) handleBeginConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	deadline := strings.TrimSpace(message.Text)
	if strings.EqualFold(deadline, "skip") {
		deadline = ""
	}

	_, err := b.sessions.CreateReadingSession(ctx, storageUser(message.From.ID), state.Data["book"], models.ReadingSession{Deadline: deadline})
	if errors.Is(err, readingsession.ErrReadingSessionInvalid) {
		b.reply(message.Chat.ID, "❌ Invalid date format. Please use YYYY-MM-DD or \"skip\"\n\nExample: 2026-12-31")
		return
	}
	if err != nil {
		b.replyError(message.Chat.ID, err)
	} else {
		text := fmt.Sprintf("✅ Started reading %s", state.Data["title"])
		if deadline != "" {
			text += fmt.Sprintf("\n⏰ Deadline: %s", deadline)
		}
		b.reply(message.Chat.ID, text)
	}
	state.Step = stepDone
}

// handleReadConversation records today's page, replacing what was recorded earlier today
func (b *Bot) handleReadConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	page, err := strconv.Atoi(strings.TrimSpace(message.Text))
	if err != nil || page < 1 {
		b.reply(message.Chat.ID, "❌ Please enter a positive page number:")
		return
	}

	user := storageUser(message.From.ID)
	bookUUID, sessionUUID := state.Data["book"], state.Data["session"]
	entry := models.DateReadingSession{
		Date:         b.clock.Now().Format(models.DateLayout),
		LastReadPage: page,
	}

	_, err = b.sessions.CreateDateReadingSession(ctx, user, bookUUID, sessionUUID, entry)
	if errors.Is(err, readingsession.ErrDateReadingSessionAlreadyExists) {
		_, err = b.sessions.UpdateDateReadingSession(ctx, user, bookUUID, sessionUUID, entry.Date, entry)
	}
	state.Step = stepDone
	if err != nil {
		b.replyError(message.Chat.ID, err)
		return
	}

	text := fmt.Sprintf("✅ Recorded page %d of %s for %s", page, state.Data["title"], entry.Date)
	if progress, err := b.sessions.GetReadingSessionProgress(ctx, user, bookUUID, sessionUUID); err == nil {
		text += "\n\n" + formatProgress(state.Data["title"], progress)
	}
	b.reply(message.Chat.ID, text)
}

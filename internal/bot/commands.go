package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to the Reading Log Bot! 📚

Available commands:
/new_book - Register a new book
/books - List your books
/begin - Start reading a book
/read - Record the page you reached today
/progress - See when you will finish a book`

	b.reply(message.Chat.ID, text)
}

// handleNewBookStart initiates the new book conversation
func (b *Bot) handleNewBookStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{
		Command: commandNewBook,
		Step:    1,
		Data:    make(map[string]string),
	})

	b.reply(message.Chat.ID, "Please enter the book title:")
}

// handleBooks lists the user's books
func (b *Bot) handleBooks(ctx context.Context, message *tgbotapi.Message) {
	books, err := b.books.ListBooks(ctx, storageUser(message.From.ID))
	if err != nil {
		b.replyError(message.Chat.ID, err)
		return
	}
	if len(books) == 0 {
		b.reply(message.Chat.ID, "No books yet. Add one with /new_book")
		return
	}

	var text strings.Builder
	text.WriteString("Your books:\n\n")
	for i, book := range books {
		text.WriteString(fmt.Sprintf("%d. %s (%d pages)\n", i+1, book.Title, book.PagesTotal))
	}
	b.reply(message.Chat.ID, text.String())
}

// handlePickBookStart starts a conversation whose first step is choosing a book
func (b *Bot) handlePickBookStart(ctx context.Context, message *tgbotapi.Message, command, prompt string) {
	books, err := b.books.ListBooks(ctx, storageUser(message.From.ID))
	if err != nil {
		b.logger.Error("Failed to list books",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
			zap.String("command", command),
		)
		b.replyError(message.Chat.ID, err)
		return
	}
	if len(books) == 0 {
		b.reply(message.Chat.ID, "No books yet. Add one with /new_book")
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: command,
		Step:    1,
		Data:    make(map[string]string),
	})

	msg := tgbotapi.NewMessage(message.Chat.ID, prompt)
	msg.ReplyMarkup = bookKeyboard(books)
	b.sendMessage(msg)
}

package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglog/internal/clock"
)

// NewBot creates a new Telegram bot
func NewBot(token string, books Books, sessions ReadingSessions, clk clock.Clock, allowedUserIDs []int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))
	return newBot(api, books, sessions, clk, allowedUserIDs, logger), nil
}

func newBot(api *tgbotapi.BotAPI, books Books, sessions ReadingSessions, clk clock.Clock, allowedUserIDs []int64, logger *zap.Logger) *Bot {
	allowedUsers := make(map[int64]bool)
	for _, id := range allowedUserIDs {
		allowedUsers[id] = true
	}

	return &Bot{
		api:          api,
		books:        books,
		sessions:     sessions,
		clock:        clk,
		allowedUsers: allowedUsers,
		states:       make(map[int64]*ConversationState),
		logger:       logger,
	}
}

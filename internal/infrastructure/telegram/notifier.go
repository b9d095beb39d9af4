package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Notifier delivers a rendered message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, message string) error
}

// BotNotifier sends messages through the Telegram Bot API.
type BotNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewBotNotifier creates a notifier backed by a Telegram bot token.
func NewBotNotifier(token string) (*BotNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &BotNotifier{bot: bot}, nil
}

// Send delivers a message to the given chat.
func (n *BotNotifier) Send(ctx context.Context, chatID int64, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

// LogNotifier writes notifications to the log. It stands in for the bot
// when no token is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message instead of delivering it.
func (n *LogNotifier) Send(ctx context.Context, chatID int64, message string) error {
	n.logger.Info().
		Int64("chat_id", chatID).
		Str("message", message).
		Msg("notification")

	return nil
}

package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dnldd/fvgscan/shared"
)

// TelegramConfig represents the configuration for the telegram notifier.
type TelegramConfig struct {
	// Token is the telegram bot token.
	Token string
	// ChatID is the id of the chat notifications are posted to.
	ChatID int64
}

// Validate asserts the config has sane inputs.
func (cfg *TelegramConfig) Validate() error {
	var errs error

	if cfg.Token == "" {
		errs = errors.Join(errs, fmt.Errorf("telegram token cannot be an empty string"))
	}
	if cfg.ChatID == 0 {
		errs = errors.Join(errs, fmt.Errorf("telegram chat id cannot be zero"))
	}

	return errs
}

// TelegramNotifier dispatches notifications to a telegram chat.
type TelegramNotifier struct {
	cfg *TelegramConfig
	bot *tgbotapi.BotAPI
}

// Ensure the telegram notifier implements the Notifier interface.
var _ shared.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier initializes a new telegram notifier.
func NewTelegramNotifier(cfg *TelegramConfig) (*TelegramNotifier, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating telegram config: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &TelegramNotifier{
		cfg: cfg,
		bot: bot,
	}, nil
}

// Notify dispatches the provided message to the configured chat.
func (n *TelegramNotifier) Notify(_ context.Context, message string) error {
	msg := tgbotapi.NewMessage(n.cfg.ChatID, message)
	_, err := n.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	return nil
}

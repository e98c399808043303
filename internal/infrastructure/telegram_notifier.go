package infrastructure

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"resilient-wa-agent/internal/interfaces"
)

// TelegramNotifier pushes operational alerts (send failures, startup) to
// an admin chat. It is an operator signal only; it never receives inbound
// traffic.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier returns a Telegram-backed notifier, or a no-op one
// when the token/chat ID are unset or the bot cannot authenticate. Alerts
// are optional; a broken notifier must never take the responder down.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) interfaces.Notifier {
	if token == "" || chatID == 0 {
		logger.Info("telegram alerts disabled (token or chat id not configured)")
		return NoopNotifier{}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Warn("telegram alerts disabled", zap.Error(err))
		return NoopNotifier{}
	}

	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	return err
}

// NoopNotifier is the null capability used when alerts are unconfigured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, text string) error {
	return nil
}

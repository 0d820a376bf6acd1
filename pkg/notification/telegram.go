package notification

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Telegram is a notify service sending to a set of chat IDs through an
// existing bot client.
type Telegram struct {
	client  *tgbotapi.BotAPI
	chatIDs []int64
}

func (t *Telegram) SetClient(client *tgbotapi.BotAPI) {
	t.client = client
}

func (t *Telegram) AddReceivers(chatIDs ...int64) {
	t.chatIDs = append(t.chatIDs, chatIDs...)
}

// Send implements notify.Notifier.
func (t *Telegram) Send(ctx context.Context, subject, message string) error {
	if t.client == nil {
		return errors.New("telegram client is not set")
	}
	text := subject + "\n" + message
	for _, chatID := range t.chatIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		msg := tgbotapi.NewMessage(chatID, text)
		_, err := t.client.Send(msg)
		if err != nil {
			return errors.Wrapf(err, "sending telegram message to chat %d", chatID)
		}
	}
	return nil
}

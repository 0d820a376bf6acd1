package notification

import (
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"openf1dashboard/pkg/menus"
)

// ListenCommands runs the telegram update loop so chats can manage their flag
// alert subscriptions. Without a configured bot it returns immediately.
func (m *Manager) ListenCommands(exitChan <-chan bool) {
	if m.bot == nil {
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := m.bot.GetUpdatesChan(u)
	for {
		select {
		case <-exitChan:
			m.bot.StopReceivingUpdates()
			return
		case update := <-updates:
			m.handleUpdate(update)
		}
	}
}

func (m *Manager) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message
	userID := strconv.FormatInt(message.From.ID, 10)
	chatID := strconv.FormatInt(message.Chat.ID, 10)

	if flag, ok := menus.FlagForButton(message.Text); ok {
		err := m.store.ToggleAlert(userID, chatID, flag)
		if err != nil {
			log.Printf("Error toggling %s alerts for chat %s: %s", flag, chatID, err.Error())
			return
		}
		m.replyAlerts(message.Chat.ID, userID, "Updated your alerts:")
		return
	}

	switch message.Command() {
	case "start", "alerts":
		m.replyAlerts(message.Chat.ID, userID, "Choose the flag alerts for this chat:")
	}
}

func (m *Manager) replyAlerts(chatID int64, userID, text string) {
	alerts, err := m.store.ListAlerts(userID)
	if err != nil {
		log.Printf("Error listing alerts for user %s: %s", userID, err.Error())
		return
	}
	reply := tgbotapi.NewMessage(chatID, text+"\n"+alerts.String())
	reply.ReplyMarkup = menus.AlertsKeyboard(alerts)
	_, err = m.bot.Send(reply)
	if err != nil {
		log.Printf("Error replying to chat %d: %s", chatID, err.Error())
	}
}

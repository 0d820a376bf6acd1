package menus

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"openf1dashboard/pkg/settings"
)

const buttonTogglePrefix = "Toggle "

// orderedFlags fixes the keyboard layout.
var orderedFlags = []string{
	settings.FlagRed,
	settings.FlagSafetyCar,
	settings.FlagYellow,
	settings.FlagChequered,
}

// AlertsKeyboard builds the reply keyboard a chat uses to toggle its flag
// alert subscriptions. Each button carries the flag's current state symbol.
func AlertsKeyboard(a settings.Alerts) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{}
	for _, flag := range orderedFlags {
		label := toggleButtonLabel(flag, a[flag])
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

func toggleButtonLabel(flag string, enabled bool) string {
	symbol := "🔕"
	if enabled {
		symbol = "🔔"
	}
	return buttonTogglePrefix + flag + " " + symbol
}

// FlagForButton maps a pressed toggle button back to its flag kind.
func FlagForButton(text string) (string, bool) {
	if !strings.HasPrefix(text, buttonTogglePrefix) {
		return "", false
	}
	for _, flag := range orderedFlags {
		if strings.HasPrefix(text, buttonTogglePrefix+flag) {
			return flag, true
		}
	}
	return "", false
}

package notification

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"

	"openf1dashboard/pkg/live"
	"openf1dashboard/pkg/metrics"
	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/pubsub"
	"openf1dashboard/pkg/queues"
	"openf1dashboard/pkg/settings"
)

// Store persists per-chat alert preferences and resolves which chats
// subscribed to a flag kind.
type Store interface {
	ListSubscribersForFlag(flag string) ([]settings.Subscriber, error)
	ToggleAlert(userID, chatID, flag string) error
	ListAlerts(userID string) (settings.Alerts, error)
}

// Manager turns race-control flag events into telegram alerts. Events queue
// up while a send is in flight so the poll loop is never blocked on telegram.
type Manager struct {
	ctx    context.Context
	store  Store
	bot    *tgbotapi.BotAPI
	events *pubsub.PubSub[model.FlagEvent]
	m      *metrics.Metrics
}

func NewManager(ctx context.Context, bot *tgbotapi.BotAPI, store Store, events *pubsub.PubSub[model.FlagEvent], m *metrics.Metrics) *Manager {
	return &Manager{
		ctx:    ctx,
		bot:    bot,
		store:  store,
		events: events,
		m:      m,
	}
}

// Start consumes flag events until exitChan fires. At most one send is in
// flight at a time; events arriving meanwhile wait on the queue.
func (m *Manager) Start(exitChan <-chan bool) {
	flagChan := m.events.Subscribe(live.TopicFlags)
	pending := queues.NewQueue[model.FlagEvent]()
	sendDone := make(chan bool, 1)
	sending := false
	for {
		select {
		case <-exitChan:
			return
		case ev := <-flagChan:
			pending.Push(ev)
			if pending.Len() > 1 {
				log.Printf("%d flag alerts pending", pending.Len())
			}
		case <-sendDone:
			sending = false
		}
		if !sending && !pending.IsEmpty() {
			next := pending.Pop()
			sending = true
			go func() {
				m.handleEvent(next)
				sendDone <- true
			}()
		}
	}
}

func (m *Manager) handleEvent(ev model.FlagEvent) {
	kind, ok := classifyFlag(ev)
	if !ok {
		return
	}
	recipients, err := m.store.ListSubscribersForFlag(kind)
	if err != nil {
		log.Printf("Error listing subscribers for flag %s: %s", kind, err.Error())
		return
	}
	if len(recipients) == 0 {
		return
	}
	log.Printf("Sending %s flag alert to %d telegram chats\n", kind, len(recipients))
	err = m.sendAlert(recipients, ev)
	if err != nil {
		log.Printf("Error notifying subscribers: %s", err.Error())
		return
	}
	if m.m != nil {
		m.m.IncNotifications()
	}
}

func (m *Manager) sendAlert(subscribers []settings.Subscriber, ev model.FlagEvent) error {
	if m.bot == nil {
		return nil
	}

	tg := Telegram{}
	tg.SetClient(m.bot)

	for _, s := range subscribers {
		chatID, _ := strconv.ParseInt(s.ChatID, 0, 64)
		tg.AddReceivers(chatID)
	}

	n := notify.NewWithServices(&tg)
	return n.Send(m.ctx, "Race control:", formatEvent(ev))
}

func formatEvent(ev model.FlagEvent) string {
	text := ev.Message
	if text == "" {
		text = ev.Flag
	}
	if ev.DriverNumber != 0 {
		text = fmt.Sprintf("%s (car %d)", text, ev.DriverNumber)
	}
	return text
}

// classifyFlag maps a race-control event to a subscribable flag kind.
func classifyFlag(ev model.FlagEvent) (string, bool) {
	flag := strings.ToUpper(ev.Flag)
	message := strings.ToUpper(ev.Message)
	switch {
	case strings.Contains(flag, "RED"):
		return settings.FlagRed, true
	case ev.Category == "SafetyCar" || strings.Contains(message, "SAFETY CAR"):
		return settings.FlagSafetyCar, true
	case strings.Contains(flag, "YELLOW"):
		return settings.FlagYellow, true
	case strings.Contains(flag, "CHEQUERED"):
		return settings.FlagChequered, true
	}
	return "", false
}

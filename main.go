package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"openf1dashboard/pkg/config"
	"openf1dashboard/pkg/live"
	"openf1dashboard/pkg/livemap"
	"openf1dashboard/pkg/metrics"
	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/notification"
	"openf1dashboard/pkg/openf1"
	"openf1dashboard/pkg/pubsub"
	"openf1dashboard/pkg/settings"
	"openf1dashboard/pkg/standings"
	"openf1dashboard/pkg/timeline"
	"openf1dashboard/pkg/webserver"
)

func main() {
	// .env is optional; system env wins
	_ = config.Load()

	baseURL := config.GetEnv(config.KeyBaseURL, openf1.DefaultBaseURL)
	sessionKey := config.GetEnv(config.KeySessionKey, "latest")
	year := config.GetEnvInt(config.KeyYear, time.Now().Year())
	pollSeconds := config.GetEnvInt(config.KeyPollIntervalSecs, 30)
	standingsMinutes := config.GetEnvInt(config.KeyStandingsRefreshMins, 10)
	addr := config.GetEnv(config.KeyWebserverAddress, webserver.DefaultAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := openf1.NewClient(openf1.WithBaseURL(baseURL))
	m := metrics.New()
	snapshots := pubsub.New[model.SessionSnapshot]()
	flags := pubsub.New[model.FlagEvent]()

	builder := timeline.NewBuilder(timeline.DefaultConfig())
	liveMgr := live.NewManager(ctx, api, builder, snapshots, flags, m)
	liveMgr.SetSessionKey(sessionKey)

	standingsMgr := standings.NewManager(ctx, standings.NewAggregator(api), year, m)

	settingsMgr, err := settings.NewManager(config.GetEnv(config.KeySettingsDB, settings.DefaultDBName))
	if err != nil {
		log.Panic(err)
	}
	defer settingsMgr.Close()

	// flag alerts are optional; without a token the manager stays silent
	var bot *tgbotapi.BotAPI
	if token := os.Getenv(config.KeyTelegramToken); token != "" {
		bot, err = tgbotapi.NewBotAPI(token)
		if err != nil {
			log.Printf("Error creating telegram bot, alerts disabled: %s", err.Error())
			bot = nil
		}
	}
	notifierExit := make(chan bool, 1)
	commandsExit := make(chan bool, 1)
	notifier := notification.NewManager(ctx, bot, settingsMgr, flags, m)
	go notifier.Start(notifierExit)
	go notifier.ListenCommands(commandsExit)

	livemapMgr := livemap.NewManager(api, timeline.DefaultConfig().LocationTolerance)
	web := webserver.NewManager(addr, liveMgr, standingsMgr, livemapMgr, snapshots, m)
	go web.Serve(ctx)

	liveTicker := time.NewTicker(time.Duration(pollSeconds) * time.Second)
	liveExit := make(chan bool, 1)
	liveMgr.Sync(liveTicker, liveExit)

	standingsTicker := time.NewTicker(time.Duration(standingsMinutes) * time.Minute)
	standingsExit := make(chan bool, 1)
	standingsMgr.Sync(standingsTicker, standingsExit)

	log.Println("Dashboard running. Press Ctrl-C to stop it")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// lock the main thread until we receive a signal
	<-sigs

	liveTicker.Stop()
	standingsTicker.Stop()
	liveExit <- true
	standingsExit <- true
	notifierExit <- true
	commandsExit <- true

	cancel()
}

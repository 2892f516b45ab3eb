package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/quietroom/quiet-room-bot/internal/config"
	"github.com/quietroom/quiet-room-bot/internal/handlers"
	"github.com/quietroom/quiet-room-bot/internal/middleware"
	"github.com/quietroom/quiet-room-bot/internal/notify"
	"github.com/quietroom/quiet-room-bot/internal/scheduler"
	"github.com/quietroom/quiet-room-bot/internal/subscription"
	"github.com/quietroom/quiet-room-bot/store"
)

func main() {
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	if cfg.AdminID == 0 {
		log.Println("Warning: ADMIN_ID is not set, broadcast commands are disabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb, err := store.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "quiet_room")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	chatStore := store.NewRedisChatStore(rdb, 24)

	pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		cfg.BotToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
	)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	locks := subscription.NewUserLocks()
	reconciler := subscription.NewReconciler(pgStore, pgStore, pgStore, locks)
	sweeper := subscription.NewSweeper(pgStore, locks)
	vipSync := subscription.NewVIPSync(pgStore, pgStore)

	notifier := notify.NewNotifier(b, pgStore)
	broadcaster := notify.NewBroadcaster(b, pgStore, cfg.BroadcastDelay)

	h := handlers.NewHandlers(pgStore, pgStore, chatStore, reconciler, vipSync, broadcaster, cfg)
	middlewares := middleware.NewUserTracker(pgStore)

	jobs := scheduler.NewScheduler()
	jobs.AddInterval("check_payments", cfg.PaymentCheckInterval, false, func(ctx context.Context) {
		affected, err := reconciler.ProcessPending()
		if err != nil {
			log.Printf("check_payments: %v", err)
			return
		}
		for _, userID := range affected {
			notifier.PaymentProcessed(ctx, userID)
		}
	})
	jobs.AddInterval("sync_users", cfg.UserSyncInterval, false, func(ctx context.Context) {
		if err := vipSync.MigrateTempVIPs(); err != nil {
			log.Printf("sync_users: temp vip migration: %v", err)
		}
		if err := vipSync.SyncVIPFlags(); err != nil {
			log.Printf("sync_users: vip flags: %v", err)
		}
	})
	jobs.AddInterval("subscription_sweep", cfg.SweepInterval, true, func(ctx context.Context) {
		expired, err := sweeper.ExpireOverdue()
		if err != nil {
			log.Printf("subscription_sweep: expire: %v", err)
		}
		for _, userID := range expired {
			notifier.SubscriptionExpired(ctx, userID)
		}

		expiring, err := sweeper.ScanExpiring()
		if err != nil {
			log.Printf("subscription_sweep: expiring scan: %v", err)
		}
		for _, u := range expiring.ThreeDays {
			notifier.SubscriptionExpiring(ctx, u.UserID, 3)
		}
		for _, u := range expiring.LastDay {
			notifier.SubscriptionExpiring(ctx, u.UserID, 0)
		}

		lapsed, err := sweeper.ScanLapsed()
		if err != nil {
			log.Printf("subscription_sweep: lapsed scan: %v", err)
		}
		for _, u := range lapsed.ThreeDays {
			notifier.SubscriptionLapsed(ctx, u.UserID, 3)
		}
		for _, u := range lapsed.SevenDays {
			notifier.SubscriptionLapsed(ctx, u.UserID, 7)
		}
	})

	jobs.Start()
	defer jobs.Stop()

	handlerChain := middlewares.TrackUserMiddleware(h.MainHandler)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	log.Println("Bot started. Press Ctrl+C to stop.")
	b.Start(ctx)
}
